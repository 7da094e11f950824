// Package printing renders customer-facing bill statements.
//
// Statements are produced as HTML by TemplateEngine from a bill statement
// view model and, when a headless Chrome is available, converted to PDF by
// ChromedpRenderer.
//
//	engine := printing.NewTemplateEngine(printing.WithCompany("UtiliTrack", "+1 555 0100"))
//	html, err := engine.RenderStatement(ctx, statement)
//	...
//	result, err := renderer.Render(ctx, &printing.RenderRequest{HTML: html, PaperSize: printing.PaperSizeA4})
package printing
