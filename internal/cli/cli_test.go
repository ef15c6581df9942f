package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type env struct {
	dir    string
	orders string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.json")
	body := `[{"name":"#1001","financial_status":"paid","email":"a@example.com"},{"name":"#1002","financial_status":"refunded"}]`
	if err := os.WriteFile(orders, []byte(body), 0o644); err != nil {
		t.Fatalf("write orders: %v", err)
	}
	return &env{dir: dir, orders: orders}
}

// run executes one CLI invocation and returns stdout.
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rt := &runtime{}
	defer rt.teardown(context.Background())

	var out, errOut bytes.Buffer
	root := newRootCmd(rt)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "absent.yaml"),
		"--data-dir", filepath.Join(e.dir, "data"),
		"--output-dir", filepath.Join(e.dir, "out"),
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

// ─────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────

func TestFieldsCmd(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "fields", "shipping", "city")
	if !strings.Contains(out, "raw.shipping_address.city") {
		t.Errorf("expected shipping city in output:\n%s", out)
	}
	if strings.Contains(out, "raw.name") {
		t.Errorf("expected search to filter, got:\n%s", out)
	}
}

func TestTemplateLifecycle(t *testing.T) {
	e := newEnv(t)

	e.mustRun(t, "template", "create", "daily")
	e.mustRun(t, "template", "select", "daily", "raw.name", "raw.email")
	e.mustRun(t, "template", "add", "daily", "raw.financial_status")
	e.mustRun(t, "template", "reorder", "daily", "raw.financial_status", "name")

	out := e.mustRun(t, "template", "show", "daily")
	iStatus := strings.Index(out, "raw.financial_status")
	iName := strings.Index(out, "raw.name")
	iEmail := strings.Index(out, "raw.email")
	if iStatus < 0 || iName < 0 || iEmail < 0 || !(iStatus < iName && iName < iEmail) {
		t.Errorf("unexpected column order:\n%s", out)
	}

	out = e.mustRun(t, "template", "list")
	if !strings.Contains(out, "daily") {
		t.Errorf("expected daily in list:\n%s", out)
	}

	e.mustRun(t, "template", "select", "daily")
	if out := e.mustRun(t, "template", "show", "daily"); strings.Contains(out, "raw.") {
		t.Errorf("expected select without paths to clear the columns:\n%s", out)
	}

	e.mustRun(t, "template", "rename", "daily", "weekly")
	if _, err := e.run(t, "template", "show", "daily"); err == nil {
		t.Error("expected old name to be gone")
	}
	e.mustRun(t, "template", "delete", "weekly")
}

func TestPreviewAndExport(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "preview", "--set", "filePath="+e.orders)
	if !strings.Contains(out, "Order Name") || !strings.Contains(out, "#1002") {
		t.Errorf("unexpected preview:\n%s", out)
	}

	out = e.mustRun(t, "export", "--source-config", `{"filePath":"`+e.orders+`"}`, "--limit", "1")
	if !strings.Contains(out, "Exported 1 row(s)") {
		t.Errorf("unexpected export output: %s", out)
	}
	entries, err := os.ReadDir(filepath.Join(e.dir, "out"))
	if err != nil || len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "order-export-template-") {
		t.Errorf("expected one export file, got %v (%v)", entries, err)
	}
}

func TestSourceFlagErrors(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "preview", "--source", "ftp"); err == nil {
		t.Error("expected unknown source error")
	}
	if _, err := e.run(t, "preview", "--set", "novalue"); err == nil {
		t.Error("expected --set parse error")
	}
	if _, err := e.run(t, "preview", "--source-config", "{"); err == nil {
		t.Error("expected --source-config parse error")
	}
}

func TestJobCommands(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "template", "create")

	if _, err := e.run(t, "job", "create", "--name", "bad", "--trigger", "schedule", "--trigger-config", "often"); err == nil {
		t.Error("expected invalid cron to fail")
	}
	out := e.mustRun(t, "job", "create", "--name", "nightly", "--set", "filePath="+e.orders,
		"--trigger", "schedule", "--trigger-config", "0 3 * * *")
	if !strings.Contains(out, `Created job "nightly"`) {
		t.Fatalf("unexpected output: %s", out)
	}
	id := strings.TrimSuffix(strings.TrimSpace(out[strings.LastIndex(out, "(")+1:]), ")")

	out = e.mustRun(t, "job", "run", id)
	if !strings.Contains(out, "Exported 2 row(s)") {
		t.Errorf("unexpected run output: %s", out)
	}
	out = e.mustRun(t, "job", "logs", id)
	if !strings.Contains(out, "success") {
		t.Errorf("expected a successful run log:\n%s", out)
	}
	out = e.mustRun(t, "job", "list")
	if !strings.Contains(out, "nightly") || !strings.Contains(out, "schedule 0 3 * * *") {
		t.Errorf("unexpected job list:\n%s", out)
	}
	e.mustRun(t, "job", "delete", id)
}

func TestSourceList(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "source", "list")
	for _, typ := range []string{"json_file", "csv_file", "http", "mongo", "database"} {
		if !strings.Contains(out, typ) {
			t.Errorf("expected %s in source list", typ)
		}
	}
}

func TestSourceDiscover(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "source", "discover", "--set", "filePath="+e.orders)
	if !strings.Contains(out, "raw.email") || !strings.Contains(out, "Email (Order)") {
		t.Errorf("unexpected discover output:\n%s", out)
	}
}
