package main

/*------------------------------------------------------------------
 *
 * Purpose: Offline tensor builder for "skipper". Merges two labeled
 * descriptor corpora into a signed 4-D tensor and writes it to disk.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	skipper "github.com/dbry/skipper/src"
)

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)

	classA := fs.StringP("class-a", "a", "", "descriptor file for class A (scores toward +99)")
	classB := fs.StringP("class-b", "b", "", "descriptor file for class B (scores toward -99)")
	out := fs.StringP("output", "o", "skipper.tensor", "path to write the built tensor")
	dims := fs.IntP("dims", "d", 4, "number of tensor axes to populate (1..4); unused axes replicate the collapsed plane")
	alternate := fs.BoolP("alternate", "x", false, "reserve every other window of each input file for test, excluded from the build set")
	help := fs.Bool("help", false, "display help text")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - build a MUSIC/TALK discriminator tensor from two descriptor corpora\n\n", os.Args[0])
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if *help {
		fs.Usage()
		os.Exit(0)
	}

	if *classA == "" || *classB == "" {
		fmt.Fprintln(os.Stderr, "config: both -a and -b descriptor files are required")
		os.Exit(1)
	}

	descsA, err := readDescriptorFile(*classA)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	descsB, err := readDescriptorFile(*classB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	tensor, err := skipper.BuildTensor(skipper.TrainerConfig{Dims: *dims, Alternate: *alternate}, descsA, descsB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	if _, err := tensor.WriteTo(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "wrote tensor to %s (%d class-A windows, %d class-B windows)\n", *out, len(descsA), len(descsB))
}

func readDescriptorFile(path string) ([]skipper.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening descriptor file %q: %w", path, err)
	}
	defer f.Close()
	return skipper.ReadDescriptors(f)
}
