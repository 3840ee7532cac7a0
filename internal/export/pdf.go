package export

import (
	"bytes"
	"context"
	"fmt"

	"prodcal/internal/capture"
	appLog "prodcal/internal/log"
	"prodcal/internal/model"
	"prodcal/internal/render"
)

// Printer turns an HTML document into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ChromePrinter prints through headless Chromium.
type ChromePrinter struct {
	Options capture.PDFOptions
}

func (p ChromePrinter) PrintPDF(ctx context.Context, html []byte) ([]byte, error) {
	return capture.PrintPDF(ctx, html, p.Options)
}

// PDF renders the printable document for year and prints it with p.
func PDF(ctx context.Context, p Printer, year int, events []model.CalendarEvent, opts render.Options) ([]byte, error) {
	var doc bytes.Buffer
	if err := render.WriteDocument(&doc, year, events, opts); err != nil {
		return nil, err
	}
	out, err := p.PrintPDF(ctx, doc.Bytes())
	if err != nil {
		appLog.Error("pdf export failed", err, "year", year, "events", len(events))
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	return out, nil
}
