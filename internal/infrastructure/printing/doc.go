// Package printing renders invoices to PDF.
//
// The invoice is first rendered to HTML with html/template, then printed by a
// headless Chrome through chromedp:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{ExecPath: cfg.ChromePath})
//	if err != nil {
//	    return err
//	}
//	printer := NewInvoicePrinter(renderer, "Lanka Electricals")
//	pdf, err := printer.Print(ctx, inv)
package printing
