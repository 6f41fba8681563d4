package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/buildkite/shellwords"
)

const shellHelp = `commands:
    r <page> <npages>   dump pages
    w <offset> <text>   write text at offset
    seek <offset>       move to offset
    q                   quit
`

// runShell executes commands read from in on a single open device, so no
// other process can access it in between.
func runShell(in io.Reader, out io.Writer, dev io.ReadWriteSeeker, d *dumper, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, "eeprom> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		args, err := shellwords.Split(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "r":
			var page, npages int
			if page, npages, err = twoInts(args); err == nil {
				err = readPages(dev, d, page, npages)
			}
		case "w":
			var offset int
			if len(args) != 3 {
				err = fmt.Errorf("usage: w <offset> <text>")
			} else if offset, err = strconv.Atoi(args[1]); err == nil {
				err = writeText(dev, int64(offset), args[2])
			}
		case "seek":
			var pos int64
			if len(args) != 2 {
				err = fmt.Errorf("usage: seek <offset>")
			} else if pos, err = strconv.ParseInt(args[1], 0, 64); err == nil {
				if pos, err = dev.Seek(pos, io.SeekStart); err == nil {
					fmt.Fprintln(out, pos)
				}
			}
		case "q", "quit":
			return nil
		default:
			fmt.Fprint(out, shellHelp)
		}

		if err != nil {
			fmt.Fprintln(out, err)
		}
	}
}

func twoInts(args []string) (a, b int, err error) {
	if len(args) != 3 {
		return 0, 0, fmt.Errorf("usage: %s <page> <npages>", args[0])
	}
	if a, err = strconv.Atoi(args[1]); err != nil {
		return
	}
	b, err = strconv.Atoi(args[2])
	return
}
