// Package api serves the read-only reporting surface: an HTML audit
// report and a JSON listing of patient records. It reads the same store
// the coordinator writes but cannot modify it.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/carebridge-project/carebridge-multi-agent/storage"
	"github.com/carebridge-project/carebridge-multi-agent/types"
)

// RecordSource is the read side of the record store.
type RecordSource interface {
	ListAll(ctx context.Context) ([]storage.PatientRecord, error)
}

// ReportServer exposes the reporting endpoints.
type ReportServer struct {
	records RecordSource
	log     *zap.Logger
	httpSrv *http.Server
}

func NewReportServer(records RecordSource, log *zap.Logger) *ReportServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportServer{records: records, log: log}
}

// Router builds the chi router for the reporting endpoints.
func (s *ReportServer) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/audit-report", s.handleAuditReport)
	r.Get("/api/records", s.handleRecords)
	return r
}

// Start serves the reporting endpoints on addr, blocking.
func (s *ReportServer) Start(addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.Router()}
	s.log.Info("report server listening", zap.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *ReportServer) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *ReportServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><body><h1>CareBridge Reports</h1>`+
		`<ul><li><a href="/audit-report">Audit report</a></li>`+
		`<li><a href="/api/records">Records (JSON)</a></li></ul></body></html>`)
}

func (s *ReportServer) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.ListAll(r.Context())
	if err != nil {
		s.log.Error("record listing failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error"})
		return
	}

	views := make([]types.RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, rec.View())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(types.RecordsResponse{
		Status:    "ok",
		Count:     len(views),
		Records:   views,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"deref": func(f *float64) float64 { return *f },
}).Parse(reportTemplateText))

const reportTemplateText = `<!DOCTYPE html>
<html>
<head><title>CareBridge Audit Report</title></head>
<body>
<h1>Patient Record Audit</h1>
<p>Generated: {{.Generated}}</p>
<p>Total records: {{.Count}}{{if .Count}} | Average age: {{printf "%.1f" .AverageAge}}{{end}}</p>
{{if .Count}}
<table border="1" cellpadding="4">
<tr><th>ID</th><th>Name</th><th>Age</th><th>Weight</th><th>Created</th></tr>
{{range .Records}}
<tr><td>{{.ID}}</td><td>{{.Name}}</td><td>{{.Age}}</td><td>{{if .Weight}}{{printf "%.1f" (deref .Weight)}}{{else}}-{{end}}</td><td>{{.CreatedAt}}</td></tr>
{{end}}
</table>
{{else}}
<p>No records on file.</p>
{{end}}
</body>
</html>`

type reportData struct {
	Generated  string
	Count      int
	AverageAge float64
	Records    []types.RecordView
}

func (s *ReportServer) handleAuditReport(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.ListAll(r.Context())
	if err != nil {
		s.log.Error("record listing failed", zap.Error(err))
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}

	data := reportData{
		Generated: time.Now().Format(time.RFC3339),
		Count:     len(records),
	}
	var ageSum int
	for _, rec := range records {
		ageSum += rec.Age
		data.Records = append(data.Records, rec.View())
	}
	if len(records) > 0 {
		data.AverageAge = float64(ageSum) / float64(len(records))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reportTemplate.Execute(w, data); err != nil {
		s.log.Error("report render failed", zap.Error(err))
	}
}
