// Command pagecrop pulls the printed page out of print-ready PDFs.
//
// Usage:
//
//	pagecrop <command> [flags] <args>
//
// Commands:
//
//	extract    <pdf>           print the page's elements
//	strip      <pdf>           print the box inside the crop marks
//	render     <pdf>           write a PNG of the content box
//	relmap     <pdf>           print the content as fractions of the box
//	calibrate  <pdf> <image>   align the page with a photo or scan of it
//	ocr        <image>         print the words found in an image
//	version                    print version information
//
// Every command accepts the flags of the config package, and the same
// settings can come from a pagecrop.yaml file or PAGECROP_* variables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var (
	version   = "dev"     // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
