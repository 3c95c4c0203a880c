package board

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExcludedApplicationsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")

	excluded, err := GetExcludedApplicationsFromFile(path)
	if err != nil {
		t.Fatalf("missing file should be empty list: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(excluded.Items))
	}

	apps := testApplications()
	excluded.Append(apps.ToExcluded(ExcludeActorUser, "manual"))
	excluded.Append(apps.ToExcluded(ExcludeActorUser, "again"))
	if len(excluded.Items) != 4 {
		t.Fatalf("append should skip known ids, got %d items", len(excluded.Items))
	}

	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	// A shorter list must fully replace the previous content.
	short := &ExcludedApplications{Items: excluded.Items[:1]}
	if err := short.ToFile(path); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	loaded, err := GetExcludedApplicationsFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(loaded.IDs(), []string{"a1"}) {
		t.Fatalf("unexpected ids: %v", loaded.IDs())
	}
	if loaded.Items[0].Actor != ExcludeActorUser || loaded.Items[0].Reason != "manual" {
		t.Fatalf("unexpected entry: %+v", loaded.Items[0])
	}
}

func TestExcludedApplicationsEmptyAndBrokenFiles(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if got, err := GetExcludedApplicationsFromFile(empty); err != nil || len(got.Items) != 0 {
		t.Fatalf("expected empty list, got %+v, %v", got, err)
	}

	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := GetExcludedApplicationsFromFile(broken); err == nil {
		t.Fatalf("expected decode error")
	}
}
