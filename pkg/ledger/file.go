package ledger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

const header = "Epoch\tLearning Rate\tTrain Loss\tValid Loss\tTrain Acc.\tValid Acc."

// fileLedger appends tab-separated rows to a progress file, one line per
// epoch, with a header naming the columns. The format is readable by
// humans and by anything that splits on tabs. Reopening an existing file
// keeps its rows and appends after them, so a resumed run extends the
// same record.
type fileLedger struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	rows   []Row
	closed bool
}

func NewFileLedger(path, title string) (Ledger, error) {
	existing, err := readRows(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open progress file: %w", err)
	}

	w := bufio.NewWriter(f)
	if existing == nil {
		if title != "" {
			fmt.Fprintf(w, "# %s\n", title)
		}
		fmt.Fprintln(w, header)
	}

	return &fileLedger{
		file:   f,
		writer: w,
		rows:   existing,
	}, nil
}

// readRows loads the data rows of an existing progress file. A nil result
// means the file does not exist or is empty and the header still has to
// be written.
func readRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("open progress file: %w", err)
	}
	defer f.Close()

	var rows []Row
	empty := true
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		empty = false
		line := scanner.Text()
		if line == "" || line == header || strings.HasPrefix(line, "#") {
			continue
		}

		var row Row
		if _, err := fmt.Sscanf(line, "%d\t%f\t%f\t%f\t%f\t%f",
			&row.Epoch, &row.LR, &row.TrainLoss, &row.TestLoss, &row.TrainAcc, &row.TestAcc); err != nil {
			return nil, fmt.Errorf("parse progress row %q: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}
	if empty {
		return nil, nil
	}
	if rows == nil {
		rows = []Row{}
	}

	return rows, nil
}

func (l *fileLedger) Append(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}

	if _, err := fmt.Fprintf(l.writer, "%d\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\n",
		row.Epoch, row.LR, row.TrainLoss, row.TestLoss, row.TrainAcc, row.TestAcc); err != nil {
		return fmt.Errorf("append progress row: %w", err)
	}
	l.rows = append(l.rows, row)

	return nil
}

func (l *fileLedger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return os.ErrClosed
	}
	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("flush progress file: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync progress file: %w", err)
	}

	return nil
}

func (l *fileLedger) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := make([]Row, len(l.rows))
	copy(rows, l.rows)

	return rows
}

func (l *fileLedger) Close() error {
	if err := l.Flush(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true

	return l.file.Close()
}
