package tenancy

import (
	"strings"
	"testing"
)

const (
	testWorkspaceID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testUserID      = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testOrgID       = "16fd2706-8baf-433b-82eb-8c7fada847da"
)

func validLabels() map[string]string {
	return map[string]string{
		LabelWorkspaceID:   testWorkspaceID,
		LabelWorkspaceName: "demo-" + testWorkspaceID,
		LabelUserID:        testUserID,
		LabelOrganization:  testOrgID,
	}
}

func TestFromLabels_Valid(t *testing.T) {
	meta, err := FromLabels(validLabels())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.WorkspaceID != testWorkspaceID {
		t.Errorf("WorkspaceID = %q, want %q", meta.WorkspaceID, testWorkspaceID)
	}
	if meta.Namespace() != "ws-demo-"+testWorkspaceID {
		t.Errorf("Namespace() = %q, want %q", meta.Namespace(), "ws-demo-"+testWorkspaceID)
	}
}

func TestFromLabels_MissingLabels(t *testing.T) {
	tests := []struct {
		name    string
		dropped string
	}{
		{"missing workspace_id", LabelWorkspaceID},
		{"missing workspace_name", LabelWorkspaceName},
		{"missing user_id", LabelUserID},
		{"missing organization_id", LabelOrganization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := validLabels()
			delete(labels, tt.dropped)

			_, err := FromLabels(labels)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.dropped) {
				t.Errorf("error %q does not name the missing label %q", err, tt.dropped)
			}
		})
	}
}

func TestFromLabels_InvalidUUID(t *testing.T) {
	labels := validLabels()
	labels[LabelOrganization] = "not-a-uuid"

	if _, err := FromLabels(labels); err == nil {
		t.Fatal("expected error for non-UUID organization_id, got nil")
	}
}

func TestFromLabels_NoFallbacks(t *testing.T) {
	// An empty label map must fail outright -- never yield zero-UUIDs or
	// sentinel identities.
	if _, err := FromLabels(map[string]string{}); err == nil {
		t.Fatal("expected error for empty labels, got nil")
	}
}

func TestRoundTrip(t *testing.T) {
	meta, err := FromLabels(validLabels())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := FromLabels(meta.Labels())
	if err != nil {
		t.Fatalf("unexpected error on round trip: %v", err)
	}
	if again != meta {
		t.Errorf("round trip changed metadata: %+v != %+v", again, meta)
	}
}

func TestWorkspaceName(t *testing.T) {
	got := WorkspaceName("demo", testWorkspaceID)
	if got != "demo-"+testWorkspaceID {
		t.Errorf("WorkspaceName = %q", got)
	}
}
