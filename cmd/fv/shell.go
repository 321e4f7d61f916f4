package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"fv-go/internal/fv"
)

// versionStore is the part of app.FVApp the shell drives.
type versionStore interface {
	Backup(rawPath string) (*fv.Version, error)
	ListVersions(fileName string) []*fv.Version
	Restore(fileName, versionID, dest string) (string, error)
	Delete(fileName, versionID string) error
}

const menu = `
==== Smart File Backup & Version Control ====
1. Backup a File
2. View File Versions
3. Restore a Version
4. Delete a Version
5. Exit
Enter your choice: `

// shell is the numbered menu loop. Failures are printed and the loop goes on;
// it ends on "5" or end of input.
type shell struct {
	in    *bufio.Reader
	out   io.Writer
	store versionStore
}

func (s *shell) run() error {
	for {
		fmt.Fprint(s.out, menu)
		choice, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}

		switch choice {
		case "1":
			path, _ := s.ask("Enter file path to backup: ")
			printBackup(s.out, s.store, path)
		case "2":
			name, _ := s.ask("Enter file name to view versions: ")
			printVersions(s.out, s.store.ListVersions(name))
		case "3":
			name, _ := s.ask("Enter file name: ")
			id, _ := s.ask("Enter version ID to restore: ")
			dest, err := s.store.Restore(name, id, "")
			if err != nil {
				fmt.Fprintln(s.out, describeError(err))
				continue
			}
			fmt.Fprintf(s.out, "Restored version %s to %s\n", id, dest)
		case "4":
			name, _ := s.ask("Enter file name: ")
			id, _ := s.ask("Enter version ID to delete: ")
			if err := s.store.Delete(name, id); err != nil {
				fmt.Fprintln(s.out, describeError(err))
				continue
			}
			fmt.Fprintf(s.out, "Deleted version %s of file %s\n", id, name)
		case "5":
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *shell) ask(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	return s.readLine()
}

// readLine returns the next trimmed line. A final line without a newline still counts.
func (s *shell) readLine() (string, bool) {
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// printBackup runs a backup and prints the outcome, including failures.
func printBackup(out io.Writer, store versionStore, path string) {
	v, err := store.Backup(path)
	if err != nil {
		fmt.Fprintln(out, describeError(err))
		return
	}
	fmt.Fprintf(out, "Backup successful. Version: %s\n", v.VersionID)
}

func printVersions(out io.Writer, versions []*fv.Version) {
	if len(versions) == 0 {
		fmt.Fprintln(out, "No versions found for this file.")
		return
	}
	for _, v := range versions {
		fmt.Fprintln(out, v.String())
	}
}
