package ingest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/MayTheStar/EVAL/internal/chunking"
	s3client "github.com/MayTheStar/EVAL/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	pdflib "github.com/ledongthuc/pdf"
)

// FetchToLocalTemp downloads a local or S3 file to a temporary path and
// returns a cleanup function.
func FetchToLocalTemp(filePath string) (string, func(), error) {
	if strings.HasPrefix(filePath, "s3://") {
		u, err := url.Parse(filePath)
		if err != nil {
			return "", func() {}, err
		}
		bucket := u.Host
		key := strings.TrimPrefix(u.Path, "/")
		cli, err := s3client.GetClient()
		if err != nil {
			return "", func() {}, err
		}
		tmp, err := os.CreateTemp("", "ingest-*.pdf")
		if err != nil {
			return "", func() {}, err
		}
		out, err := cli.GetObject(context.Background(), &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", func() {}, err
		}
		defer out.Body.Close()
		if _, err := io.Copy(tmp, out.Body); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", func() {}, err
		}
		tmp.Close()
		return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
	}

	abs := filePath
	if !filepath.IsAbs(abs) {
		cwd, _ := os.Getwd()
		abs = filepath.Join(cwd, filePath)
	}
	src, err := os.Open(abs)
	if err != nil {
		return "", func() {}, err
	}
	defer src.Close()
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", func() {}, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", func() {}, err
	}
	tmp.Close()
	return tmp.Name(), func() { _ = os.Remove(tmp.Name()) }, nil
}

// ExtractUnits reads a PDF and produces ordered structural units: one unit per
// paragraph, parented to the section and page it appears on. The ancestor
// chain carries page_number and heading metadata for the resolver.
func ExtractUnits(localPath, title string) ([]*chunking.StructuralUnit, int, error) {
	f, reader, err := pdflib.Open(localPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	root := &chunking.StructuralUnit{
		Meta: map[string]any{"title": strings.TrimSuffix(title, filepath.Ext(title))},
	}

	var units []*chunking.StructuralUnit
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		pageNode := &chunking.StructuralUnit{
			Meta:   map[string]any{"page_number": pageNum},
			Parent: root,
		}
		section := pageNode
		for _, para := range splitParagraphs(text) {
			if looksLikeHeading(para) {
				section = &chunking.StructuralUnit{
					Meta:   map[string]any{"heading": para},
					Parent: pageNode,
				}
				continue
			}
			units = append(units, &chunking.StructuralUnit{
				Index:   len(units),
				RawText: para,
				Parent:  section,
			})
		}
	}

	if len(units) == 0 {
		return nil, numPages, fmt.Errorf("no text content in %s", title)
	}
	return units, numPages, nil
}

// splitParagraphs breaks page text on blank lines; pages without blank-line
// structure come back as a single block.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

var numberedHeading = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s+\S`)

// looksLikeHeading flags short title-like lines: numbered section markers or
// all-caps lines without terminal punctuation.
func looksLikeHeading(para string) bool {
	p := strings.TrimSpace(para)
	if p == "" || len(p) > 80 || strings.ContainsRune(p, '\n') {
		return false
	}
	if strings.HasSuffix(p, ".") || strings.HasSuffix(p, ":") {
		return false
	}
	if numberedHeading.MatchString(p) {
		return true
	}
	hasLetter := false
	for _, r := range p {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
