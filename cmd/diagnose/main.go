// Diagnostic tool for inspecting HDF5 files. Prints the group hierarchy
// with the per-dataset details h5trim preserves: shape, chunk layout,
// filter pipeline, and attributes. Useful for comparing an input file
// against its trimmed output.
package main

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/h5trim/hdf5"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/diagnose/main.go <file.h5>")
		os.Exit(1)
	}

	filename := os.Args[1]
	fmt.Printf("=== %s ===\n\n", filename)

	f, err := hdf5.Open(filename)
	if err != nil {
		fmt.Printf("ERROR: Failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("Superblock version: %d\n\n", f.Version())

	err = hdf5.Walk(f.Root(), func(path string, obj interface{}, err error) error {
		if err != nil {
			fmt.Printf("%s: ERROR: %v\n", path, err)
			return nil
		}

		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Printf("Group %q\n", path)
			printAttrs("  ", o.Attrs())

		case *hdf5.Dataset:
			fmt.Printf("Dataset %q\n", path)
			if o.IsScalar() {
				fmt.Println("  Shape: scalar")
			} else {
				fmt.Printf("  Shape: %v  (%d rows)\n", o.Shape(), o.Shape()[0])
			}
			fmt.Printf("  Element size: %d bytes\n", o.DtypeSize())
			if chunks := o.ChunkDims(); chunks != nil {
				fmt.Printf("  Chunks: %v\n", chunks)
			} else {
				fmt.Println("  Chunks: none (contiguous or compact)")
			}
			for _, f := range o.Filters() {
				fmt.Printf("  Filter: ID=%d name=%q cd=%v\n", f.ID, f.Name, f.ClientData)
			}
			printAttrs("  ", o.Attrs())
		}
		return nil
	})
	if err != nil {
		fmt.Printf("ERROR walking file: %v\n", err)
		os.Exit(1)
	}
}

func printAttrs(indent string, names []string) {
	if len(names) > 0 {
		fmt.Printf("%sAttrs: %v\n", indent, names)
	}
}
