package insights

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// CommitHistoryFile is the file name the commit table is written to inside
// the output directory.
const CommitHistoryFile = "commit_history.csv"

// TimeLayout is the sortable textual form commit times are written in.
const TimeLayout = "2006-01-02 15:04:05"

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	csvHeader = []string{
		"commit_hash",
		"author_name",
		"author_email",
		"commit_time",
		"commit_message",
		"insertions",
		"deletions",
	}
)

// WriteCSV writes the table as UTF-8 with a byte order mark, one header row
// and one row per record.
func (t *CommitTable) WriteCSV(w io.Writer) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range t.records {
		row := []string{
			r.Hash,
			r.AuthorName,
			r.AuthorEmail,
			r.CommitTime.Format(TimeLayout),
			r.Message,
			strconv.Itoa(r.Insertions),
			strconv.Itoa(r.Deletions),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the table to path, creating the parent directory if needed
// and replacing any existing file.
func (t *CommitTable) SaveCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Wrap(err, "could not create output directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".commit_history-*.csv")
	if err != nil {
		return errors.Wrap(err, "could not create temporary csv file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := t.WriteCSV(bw); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "could not write csv")
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "could not flush csv")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "could not close csv")
	}

	return errors.Wrapf(os.Rename(tmp.Name(), path), "could not move csv into %s", path)
}

// ReadCSV parses a table previously written by WriteCSV. A leading byte order
// mark is optional. Times are interpreted in loc.
func ReadCSV(r io.Reader, loc *time.Location) (*CommitTable, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(lead, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "could not read csv header")
	}
	for i, name := range csvHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected csv column %d: %q, want %q", i, header[i], name)
		}
	}

	var records []CommitRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not read csv line %d", line)
		}

		when, err := time.ParseInLocation(TimeLayout, row[3], loc)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad commit_time", line)
		}
		insertions, err := strconv.Atoi(row[5])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad insertions", line)
		}
		deletions, err := strconv.Atoi(row[6])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: bad deletions", line)
		}

		records = append(records, CommitRecord{
			Hash:        row[0],
			AuthorName:  row[1],
			AuthorEmail: row[2],
			CommitTime:  when,
			Message:     row[4],
			Insertions:  insertions,
			Deletions:   deletions,
		})
	}

	return NewCommitTable(records), nil
}

// LoadCSV reads the table stored at path.
func LoadCSV(path string, loc *time.Location) (*CommitTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open commit history")
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f, loc)
}
