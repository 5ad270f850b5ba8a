package presenter

// OtherGroupLabel collects readings that do not start with a hiragana row character.
const OtherGroupLabel = "その他"

// row is one hiragana row bucket. Bounds are inclusive runes.
type row struct {
	label string
	slug  string
	first rune
	last  rune
}

var rows = []row{
	{label: "あ", slug: "a", first: 'あ', last: 'お'},
	{label: "か", slug: "ka", first: 'か', last: 'ご'},
	{label: "さ", slug: "sa", first: 'さ', last: 'ぞ'},
	{label: "た", slug: "ta", first: 'た', last: 'ど'},
	{label: "な", slug: "na", first: 'な', last: 'の'},
	{label: "は", slug: "ha", first: 'は', last: 'ぽ'},
	{label: "ま", slug: "ma", first: 'ま', last: 'も'},
	{label: "や", slug: "ya", first: 'や', last: 'よ'},
	{label: "ら", slug: "ra", first: 'ら', last: 'ろ'},
	{label: "わ", slug: "wa", first: 'わ', last: 'ん'},
}

const otherSlug = "other"

// GroupOf returns the group label for a reading, based on its first character.
// Empty and non-kana readings fall into OtherGroupLabel.
func GroupOf(reading string) string {
	if i := rowIndex(reading); i < len(rows) {
		return rows[i].label
	}
	return OtherGroupLabel
}

// rowIndex returns the index into rows, or len(rows) for the other bucket.
func rowIndex(reading string) int {
	for _, first := range reading {
		for i, r := range rows {
			if first >= r.first && first <= r.last {
				return i
			}
		}
		break
	}
	return len(rows)
}

func anchorID(slug string) string {
	return "row-" + slug
}
