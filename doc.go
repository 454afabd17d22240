// Package kumihan converts Kumihan block notation to standalone HTML
// documents. Kumihan notation decorates text blocks with ;;; marker
// lines:
//
//	;;;太字
//	強調したい本文
//	;;;
//
// The converter is built around graceful error handling: malformed
// markers, unknown keywords, bad attributes, and encoding problems are
// classified, corrected where possible, and reported, instead of
// failing the whole document on the first bad line.
//
// # Quick Start
//
//	conv, err := kumihan.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, kumihan.Input{
//	    SourceFile: "novel.txt",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("novel.html", []byte(result.HTML), 0644)
//	fmt.Printf("%d problems, %.0f%% recovered\n",
//	    result.Report.TotalErrors, result.Report.RecoveryRate*100)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Source loading with encoding fallback (UTF-8, Shift_JIS, EUC-JP,
//     ISO-2022-JP)
//  2. Block splitting: Kumihan marker blocks vs. plain Markdown text
//  3. Kumihan block parsing with classification, correction, and
//     recovery of violations
//  4. Markdown rendering via Goldmark (GFM, syntax highlighting)
//  5. Document assembly: HTML template plus injected CSS style
//
// # Error Handling
//
// Every violation becomes a structured record carrying a severity, a
// category, a pattern id, and up to five fix suggestions. A chain of
// recovery strategies (memory, encoding, permission, file-not-found,
// syntax) tries to repair the underlying cause; unrecovered violations
// are annotated inline in the output. Handling levels decide when to
// give up:
//
//	conv, err := kumihan.NewConverter(
//	    kumihan.WithErrorLevel("lenient"),
//	    kumihan.WithCategoryLevel("encoding", "strict"),
//	    kumihan.WithMaxErrors("syntax", 10),
//	)
//
// Critical errors always abort. The report of an aborted run is still
// returned alongside an error wrapping ErrConversionAborted.
//
// # Configuration
//
// Settings can also come from a YAML file, with explicit options taking
// precedence:
//
//	conv, err := kumihan.NewConverter(
//	    kumihan.WithConfigFile("kumihan.yaml"),
//	    kumihan.WithStyle("dark"),
//	    kumihan.WithReport("json", "errors.json"),
//	)
package kumihan
