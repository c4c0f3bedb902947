package project

var (
	description    = "Multi-tenant runtime turning declarative MCP server definitions into auto-scaled services on Kubernetes."
	gitSHA         = "n/a"
	name           = "nimbletools-core"
	source         = "https://github.com/nimblebrain/nimbletools-core"
	version        = "0.1.0"
	buildTimestamp = "n/a"
)

func Description() string {
	return description
}

func GitSHA() string {
	return gitSHA
}

func Name() string {
	return name
}

func Source() string {
	return source
}

func Version() string {
	return version
}

func BuildTimestamp() string {
	return buildTimestamp
}
