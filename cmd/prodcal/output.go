package main

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"prodcal/internal/config"
	"prodcal/internal/export"
)

const (
	formatGrid = "grid"
	formatCSV  = "csv"
	formatICS  = "ics"
	formatJSON = "json"
	formatPDF  = "pdf"
)

func validFormat(f string) error {
	switch f {
	case formatGrid, formatCSV, formatICS, formatJSON, formatPDF:
		return nil
	}
	return fmt.Errorf("unknown format %q: want grid, csv, ics, json or pdf", f)
}

// outputPath returns where format should be written. Empty means stdout.
// PDF is binary and always goes to a file.
func outputPath(format, out string, year int) string {
	if out == "-" {
		return ""
	}
	if out == "" && format == formatPDF {
		return export.PDFFilename(year)
	}
	return out
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// previewURL points Chromium at the local /calendar page. Credentials ride in
// the URL when basic auth is on.
func previewURL(conf *config.Config, year int) string {
	host, port, err := net.SplitHostPort(conf.Listen)
	if err != nil {
		host, port = conf.Listen, ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	}
	u := url.URL{
		Scheme:   "http",
		Host:     host,
		Path:     "/calendar",
		RawQuery: "year=" + strconv.Itoa(year),
	}
	if conf.BasicAuth != nil && conf.BasicAuth.Username != "" {
		u.User = url.UserPassword(conf.BasicAuth.Username, conf.BasicAuth.Password)
	}
	return u.String()
}
