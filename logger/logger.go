// Package logger provides adapters for popular logger libraries to work with bptree's Logger interface.
//
// The adapters allow you to use your existing logger with bptree without writing boilerplate.
// Note that the standard library's slog.Logger already implements bptree.Logger directly.
//
// Example with zap:
//
//	import (
//	    "github.com/alSheiye5h/bptree"
//	    "github.com/alSheiye5h/bptree/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//
//	    tree, err := bptree.NewOrdered[int64, string](64,
//	        bptree.WithLogger(logger.NewZap(zapLogger)),
//	        bptree.WithDebug(),
//	    )
//	    if err != nil {
//	        panic(err)
//	    }
//	    _ = tree
//	}
package logger
