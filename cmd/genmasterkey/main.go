package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/harrylevesque/qrscan/internal/crypto"
)

// genmasterkey writes the master key used to encrypt the scan history.
func main() {
	keyFile := flag.String("out", "master.key", "Key file to write")
	force := flag.Bool("force", false, "Overwrite an existing key file")
	flag.Parse()

	if err := crypto.WriteMasterKey(*keyFile, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Master key written to %s\n", *keyFile)
}
