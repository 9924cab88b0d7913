// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Gebo contact tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halvard/gebo/internal/contacts"
	"github.com/halvard/gebo/internal/contactservice"
)

// Server wraps the MCP server with Gebo tools.
type Server struct {
	mcp *server.MCPServer
	svc *contactservice.Service
}

// New creates a new MCP server with all Gebo tools registered.
func New(svc *contactservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Gebo",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List contact documents in the vault."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("read_contact",
		mcp.WithDescription("Read the full content of a contact document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. people/jane.md)")),
	), s.readContact)

	s.mcp.AddTool(mcp.NewTool("schedule_birthday_reminders",
		mcp.WithDescription("Create the birthday reminder pair (advance warning and day-of) "+
			"for one contact document. Idempotent: reminders that already exist are not "+
			"duplicated. Documents must follow the canonical contact format; read the "+
			"contract first via the get_contact_contract tool or the gebo://contact-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the contact document")),
		mcp.WithNumber("advance_days", mcp.Description("Days of advance warning (default 7)")),
	), s.scheduleBirthdayReminders)

	s.mcp.AddTool(mcp.NewTool("insert_reminder",
		mcp.WithDescription("Insert a scheduled reminder heading into a document. "+
			"Not idempotent: calling twice with the same text creates two reminders."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Reminder heading text")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD form, optionally with HH:MM[:SS]")),
		mcp.WithNumber("repeat_years", mcp.Description("Yearly repeat interval (0 for one-off)")),
	), s.insertReminder)

	s.mcp.AddTool(mcp.NewTool("upcoming_birthdays",
		mcp.WithDescription("List contacts whose next birthday falls within a horizon, soonest first."),
		mcp.WithNumber("within", mcp.Description("Horizon in days (default 30)")),
	), s.upcomingBirthdays)

	s.mcp.AddTool(mcp.NewTool("list_managed_properties",
		mcp.WithDescription("List the contact property keys managed by Gebo."),
	), s.listManagedProperties)

	s.mcp.AddTool(mcp.NewTool("get_contact_contract",
		mcp.WithDescription("Returns the canonical Gebo contact document format contract. "+
			"Call this before creating or editing contact documents to ensure correct structure."),
	), s.getContactContract)

	// Resource: contact format contract.
	s.mcp.AddResource(
		mcp.NewResource("gebo://contact-format", "Contact Format Contract",
			mcp.WithResourceDescription("Canonical Markdown contact document format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContactFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listContacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 50)
	offset := req.GetInt("offset", 0)

	items, total, err := s.svc.ListContacts(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{"contacts": items, "total": total}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) scheduleBirthdayReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	advance := req.GetInt("advance_days", 7)

	created, err := s.svc.ScheduleReminders(ctx, path, advance)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(created) == 0 {
		return mcp.NewToolResultText("no reminders created (already present or not a contact)"), nil
	}
	var lines []string
	for _, r := range created {
		lines = append(lines, fmt.Sprintf("created: %s at %s", r.Heading, r.At.Format("2006-01-02")))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) insertReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	at, err := contacts.ParseDate(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date: %s", date)), nil
	}
	repeat := req.GetInt("repeat_years", 0)

	r, err := s.svc.InsertReminder(ctx, path, text, at, repeat)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s at %s", r.Heading, r.At.Format("2006-01-02"))), nil
}

func (s *Server) upcomingBirthdays(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	within := req.GetInt("within", 30)

	entries, err := s.svc.UpcomingBirthdays(ctx, within)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no upcoming birthdays"), nil
	}
	var lines []string
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", e.Next.Format("2006-01-02"), e.Name, e.Path))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listManagedProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.svc.ManagedProperties(), "\n")), nil
}

func (s *Server) getContactContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContactFormatContract), nil
}

func (s *Server) readContactFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gebo://contact-format",
			MIMEType: "text/markdown",
			Text:     ContactFormatContract,
		},
	}, nil
}
