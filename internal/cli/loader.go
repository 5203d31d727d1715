package cli

import (
	"fmt"
	"os"

	"github.com/calegray/taxidrill/internal/dataset"
	"github.com/calegray/taxidrill/internal/workbook"
)

// loadWorkbook returns the workbook at dir, or the embedded workbook
// when dir is empty.
func loadWorkbook(dir string) (*workbook.Workbook, error) {
	if dir == "" {
		return workbook.LoadEmbedded()
	}
	wb, err := workbook.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load workbook %s: %w", dir, err)
	}
	return wb, nil
}

// openDatabase opens an existing practice database. Open would create a
// missing file, so an explicit existence check keeps typos from turning
// into empty databases.
func openDatabase(path string) (*dataset.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found at %s (run taxidrill setup first): %w", path, err)
	}
	db, err := dataset.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}
