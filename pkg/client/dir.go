package client

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// DirListing is the file some servers keep up to date with the content
// of their root directory.
const DirListing = "dir.txt"

type DirEntry struct {
	Name string
	Date string
	Size string
}

// Dir fetches the server listing. Rows are expected to carry name, date
// and size separated by whitespace; the listing's own row is skipped.
func (c *Client) Dir() ([]DirEntry, error) {
	tmp, err := os.CreateTemp("", ".dir-*.txt")
	if err != nil {
		return nil, newError(KindIO, err, "error while creating listing file")
	}

	local := tmp.Name()

	if err := tmp.Close(); err != nil {
		return nil, newError(KindIO, err, "error while creating listing file")
	}

	defer func() {
		if err := os.Remove(local); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.l.Debugf("error while removing listing file: %s", err.Error())
		}
	}()

	progress := c.progress
	c.progress = nil

	defer func() { c.progress = progress }()

	if _, err := c.Get(DirListing, local); err != nil {
		return nil, err
	}

	f, err := os.Open(local)
	if err != nil {
		return nil, newError(KindIO, err, "error while reading listing")
	}

	defer f.Close()

	return parseListing(f)
}

func parseListing(r io.Reader) ([]DirEntry, error) {
	var entries []DirEntry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[0] == DirListing {
			continue
		}

		entries = append(entries, DirEntry{Name: fields[0], Date: fields[1], Size: fields[2]})
	}

	if err := scanner.Err(); err != nil {
		return nil, newError(KindIO, err, "error while reading listing")
	}

	return entries, nil
}
