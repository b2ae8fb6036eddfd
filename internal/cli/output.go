package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/search"
)

func printDogs(out io.Writer, dogs []models.Dog, isFavorite func(string) bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tBREED\tAGE\tZIP")
	for _, dog := range dogs {
		mark := ""
		if isFavorite != nil && isFavorite(dog.ID) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", mark, dog.ID, dog.Name, dog.Breed, dog.Age, dog.ZipCode)
	}

	return w.Flush()
}

func printLocations(out io.Writer, locations []models.Location) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ZIP\tCITY\tSTATE\tCOUNTY")
	for _, location := range locations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", location.ZipCode, location.City, location.State, location.County)
	}

	return w.Flush()
}

// pageLine renders e.g. "Page 2 of 10: 1 [2] 3 4 ... 10".
func pageLine(current, total int) string {
	parts := make([]string, 0, 7)
	for _, page := range search.PageWindow(current, total) {
		switch page {
		case search.Ellipsis:
			parts = append(parts, "...")
		case current:
			parts = append(parts, "["+strconv.Itoa(page)+"]")
		default:
			parts = append(parts, strconv.Itoa(page))
		}
	}

	return fmt.Sprintf("Page %d of %d: %s", current, total, strings.Join(parts, " "))
}
