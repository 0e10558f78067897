package util

import (
	"fmt"
	"time"
)

// Example output for "ex.txt": "21313123123_ex.txt"
func AddUniquePrefixToFileName(fileName string) string {
	uniquePrefix := fmt.Sprintf("%d", time.Now().UnixNano())
	return fmt.Sprintf("%s_%s", uniquePrefix, fileName)
}

// ExportFileName names a procedure export, e.g.
// "dossiers_aide_2017_2024-05-01_x7k2p9.csv".
func ExportFileName(procedurePath string, extension string, now time.Time) (string, error) {
	suffix, err := GenerateLowerNChar(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("dossiers_%s_%s_%s%s", procedurePath, now.UTC().Format("2006-01-02"), suffix, extension), nil
}
