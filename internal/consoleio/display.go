package consoleio

import (
	"sort"
	"strconv"

	"github.com/dekarrin/constrain/internal/vocab"
	"github.com/dekarrin/rosed"
	"golang.org/x/text/width"
)

// FormatLegalTokens renders the given set of legal token ids as a
// two-column table of id and decoded display text, sorted by id, wrapped to
// termWidth.
func FormatLegalTokens(v *vocab.Vocabulary, legal map[vocab.ID]struct{}, termWidth int) string {
	ids := make([]vocab.ID, 0, len(legal))
	for id := range legal {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	data := [][]string{{"ID", "TEXT"}}
	for _, id := range ids {
		disp, ok := v.Display(id)
		if !ok {
			continue
		}
		data = append(data, []string{fmtID(id), narrowDisplay(disp)})
	}

	opts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	return rosed.Edit("").InsertTableOpts(0, data, termWidth, opts).String()
}

func fmtID(id vocab.ID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// narrowDisplay folds any East-Asian fullwidth/halfwidth forms in disp down
// to their narrow equivalents so table columns made of mixed scripts line up
// under a fixed-width terminal font.
func narrowDisplay(disp string) string {
	return width.Narrow.String(disp)
}
