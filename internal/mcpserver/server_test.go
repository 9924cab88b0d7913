package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halvard/gebo/internal/contactservice"
	"github.com/halvard/gebo/internal/index"
	"github.com/halvard/gebo/internal/scheduler"
	"github.com/halvard/gebo/internal/storage"
)

const janeSrc = `---
title: Jane Doe
tags: [person]
CONTACT_BIRTHDAY: "1985-03-15"
---
# Notes
`

func testServer(t *testing.T) (*Server, *contactservice.Service, storage.Provider) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "gebo-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Date(2022, time.November, 1, 12, 0, 0, 0, time.UTC)
	svc := contactservice.NewService(store, db, scheduler.DefaultConfig(),
		contactservice.WithClock(func() time.Time { return now }))

	srv := New(svc)
	return srv, svc, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_contacts":
		result, err = srv.listContacts(ctx, req)
	case "read_contact":
		result, err = srv.readContact(ctx, req)
	case "schedule_birthday_reminders":
		result, err = srv.scheduleBirthdayReminders(ctx, req)
	case "insert_reminder":
		result, err = srv.insertReminder(ctx, req)
	case "upcoming_birthdays":
		result, err = srv.upcomingBirthdays(ctx, req)
	case "list_managed_properties":
		result, err = srv.listManagedProperties(ctx, req)
	case "get_contact_contract":
		result, err = srv.getContactContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadContact(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("jane.md", []byte(janeSrc))

	r := callTool(t, srv, "read_contact", map[string]interface{}{"path": "jane.md"})
	if resultText(r) != janeSrc {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestReadContactMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_contact", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestScheduleBirthdayReminders(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("jane.md", []byte(janeSrc))

	r := callTool(t, srv, "schedule_birthday_reminders", map[string]interface{}{
		"path":         "jane.md",
		"advance_days": 7,
	})
	text := resultText(r)
	if !strings.Contains(text, "Jane Doe's birthday in 7 days") {
		t.Errorf("result = %q", text)
	}
	if !strings.Contains(text, "2023-03-08") {
		t.Errorf("advance date missing in %q", text)
	}

	// Second call reports nothing created.
	r = callTool(t, srv, "schedule_birthday_reminders", map[string]interface{}{
		"path":         "jane.md",
		"advance_days": 7,
	})
	if !strings.Contains(resultText(r), "no reminders created") {
		t.Errorf("second call = %q", resultText(r))
	}
}

func TestScheduleBirthdayReminders_BadBirthday(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("bad.md", []byte("---\ntitle: Bad\ntags: [person]\nCONTACT_BIRTHDAY: soon\n---\n"))

	r := callTool(t, srv, "schedule_birthday_reminders", map[string]interface{}{"path": "bad.md"})
	if !r.IsError {
		t.Error("expected error for malformed birthday")
	}
}

func TestInsertReminder(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("jane.md", []byte(janeSrc))

	r := callTool(t, srv, "insert_reminder", map[string]interface{}{
		"path": "jane.md",
		"text": "Call about the move",
		"date": "2023-05-01",
	})
	if !strings.Contains(resultText(r), "created: Call about the move") {
		t.Errorf("result = %q", resultText(r))
	}

	data, _ := store.Read("jane.md")
	if !strings.Contains(string(data), "## TODO Call about the move") {
		t.Errorf("reminder not persisted:\n%s", data)
	}
}

func TestInsertReminder_BadDate(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("jane.md", []byte(janeSrc))

	r := callTool(t, srv, "insert_reminder", map[string]interface{}{
		"path": "jane.md",
		"text": "x",
		"date": "next friday",
	})
	if !r.IsError {
		t.Error("expected error for bad date")
	}
}

func TestListContacts(t *testing.T) {
	srv, svc, store := testServer(t)
	_ = store.Write("jane.md", []byte(janeSrc))
	data, _ := store.Read("jane.md")
	if err := svc.IndexFile("jane.md", data); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_contacts", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "jane.md") {
		t.Errorf("list = %q", text)
	}
}

func TestListManagedProperties(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "list_managed_properties", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "CONTACT_BIRTHDAY") || !strings.Contains(text, "CONTACT_PHONES") {
		t.Errorf("properties = %q", text)
	}
}

func TestGetContactContract(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_contact_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Contact Document Format Contract") {
		t.Error("contract text missing")
	}
}
