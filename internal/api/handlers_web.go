package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Raw HTML in summaries is escaped, not passed through.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))

type pageData struct {
	Error       string
	Filename    string
	Title       string
	SummaryHTML template.HTML
	Chunks      int
	Skipped     int
	Failed      int
	Cached      bool
	MaxUpload   string
	Accept      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{})
}

// handleUpload is the form flow: summarize in-request and render the result.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.readUpload(w, r, "uploaded_file")
	if err != nil {
		code, msg := classify(err)
		s.renderPage(w, code, pageData{Error: msg})
		return
	}

	out, err := s.summarizer.SummarizeDocument(r.Context(), data, filename)
	if err != nil {
		code, msg := classify(err)
		if code >= 500 {
			s.log.Error("error processing upload", "filename", filename, "error", err)
		}
		s.renderPage(w, code, pageData{Error: msg, Filename: filename})
		return
	}

	summaryHTML, err := renderMarkdown(out.Summary)
	if err != nil {
		s.log.Error("render summary", "error", err)
		s.renderPage(w, http.StatusInternalServerError, pageData{Error: "An error occurred while processing the file"})
		return
	}
	s.renderPage(w, http.StatusOK, pageData{
		Filename:    filename,
		Title:       out.Title,
		SummaryHTML: summaryHTML,
		Chunks:      out.ChunksTotal,
		Skipped:     out.ChunksSkipped,
		Failed:      out.ChunksFailed,
		Cached:      out.Cached,
	})
}

func (s *Server) renderPage(w http.ResponseWriter, code int, data pageData) {
	data.MaxUpload = formatBytes(s.cfg.MaxUploadBytes)
	data.Accept = acceptList(s.cfg.AllowedExtensions)

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func acceptList(exts []string) string {
	return strings.Join(exts, ",")
}
