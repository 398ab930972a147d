// Package refdoc turns uploaded reference documents into prompt content
// for the model. Binary formats are attached inline, text formats have
// their text extracted and clipped to a token budget, and anything else
// is ignored.
package refdoc

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

const mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Attachment is one uploaded reference file.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Limits bound how much of an attachment reaches the prompt.
type Limits struct {
	MaxBytes  int64 // binary attachments above this are skipped
	MaxTokens int   // text attachments are clipped to this budget
}

// Contents renders attachments as model content blocks, in order.
// Attachments that cannot be processed are skipped with a warning;
// unsupported types are silently ignored.
func Contents(atts []Attachment, lim Limits, log *slog.Logger) []*genai.Content {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	var out []*genai.Content
	for _, att := range atts {
		c, err := render(att, lim, log)
		if err != nil {
			log.Warn("failed to process attachment", "filename", att.Filename, "error", err)
			continue
		}
		if c == nil {
			log.Debug("ignoring unsupported attachment",
				"filename", att.Filename, "content_type", att.ContentType)
			continue
		}
		out = append(out, c)
	}
	return out
}

func render(att Attachment, lim Limits, log *slog.Logger) (*genai.Content, error) {
	kind := kindOf(att)
	switch {
	case kind == "application/pdf":
		if err := checkSize(att, lim); err != nil {
			return nil, err
		}
		return genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Reference document: " + att.Filename),
			genai.NewPartFromBytes(att.Data, "application/pdf"),
		}, genai.RoleUser), nil
	case strings.HasPrefix(kind, "image/"):
		if err := checkSize(att, lim); err != nil {
			return nil, err
		}
		return genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Reference image: " + att.Filename),
			genai.NewPartFromBytes(att.Data, kind),
		}, genai.RoleUser), nil
	case kind == "text/plain":
		return textContent(att.Filename, string(att.Data), lim), nil
	case kind == "text/markdown":
		return textContent(att.Filename, markdownText(att.Data), lim), nil
	case kind == "text/html":
		text, err := htmlText(att.Data)
		if err != nil {
			return nil, err
		}
		return textContent(att.Filename, text, lim), nil
	case kind == "text/csv":
		text, err := csvText(att.Data)
		if err != nil {
			return nil, err
		}
		return textContent(att.Filename, text, lim), nil
	case kind == mimeDocx:
		text, err := docxText(att.Data)
		if err != nil || strings.TrimSpace(text) == "" {
			if err != nil {
				log.Warn("docx text extraction failed, attaching as note",
					"filename", att.Filename, "error", err)
			}
			return genai.NewContentFromText(
				fmt.Sprintf("Reference document: %s (DOCX file attached)", att.Filename),
				genai.RoleUser), nil
		}
		return textContent(att.Filename, text, lim), nil
	}
	return nil, nil
}

func textContent(filename, text string, lim Limits) *genai.Content {
	return genai.NewContentFromText(
		fmt.Sprintf("Reference text file '%s':\n%s", filename, Clip(text, lim.MaxTokens)),
		genai.RoleUser)
}

func checkSize(att Attachment, lim Limits) error {
	if lim.MaxBytes > 0 && int64(len(att.Data)) > lim.MaxBytes {
		return fmt.Errorf("attachment %s exceeds %d bytes", att.Filename, lim.MaxBytes)
	}
	return nil
}

// kindOf normalizes the declared content type, falling back to the file
// extension when the client sent none.
func kindOf(att Attachment) string {
	ct := att.ContentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(att.Filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".csv":
		return "text/csv"
	case ".docx":
		return mimeDocx
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	}
	return ct
}
