// Package feed defines the heterogeneous list entries produced by one
// aggregate fetch and the rules that order them.
package feed

// Kind identifies an Entry variant.
type Kind int

const (
	KindSectionHeader Kind = iota
	KindBanner
	KindArticle
	KindUser
	KindStat
	KindAd
	KindFooter
)

func (k Kind) String() string {
	switch k {
	case KindSectionHeader:
		return "section_header"
	case KindBanner:
		return "banner"
	case KindArticle:
		return "article"
	case KindUser:
		return "user"
	case KindStat:
		return "stat"
	case KindAd:
		return "ad"
	case KindFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Entry is one row of a composite list. The set of implementations is
// closed: only the variant types in this package satisfy it.
type Entry interface {
	EntryID() string
	Kind() Kind
	sealed()
}

// SectionHeader opens the section of one category.
type SectionHeader struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

type Banner struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Stat struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Ad struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Footer closes the list.
type Footer struct {
	ID   string `json:"id"`
	Hint string `json:"hint"`
}

func (e SectionHeader) EntryID() string { return e.ID }
func (e Banner) EntryID() string        { return e.ID }
func (e Article) EntryID() string       { return e.ID }
func (e User) EntryID() string          { return e.ID }
func (e Stat) EntryID() string          { return e.ID }
func (e Ad) EntryID() string            { return e.ID }
func (e Footer) EntryID() string        { return e.ID }

func (SectionHeader) Kind() Kind { return KindSectionHeader }
func (Banner) Kind() Kind        { return KindBanner }
func (Article) Kind() Kind       { return KindArticle }
func (User) Kind() Kind          { return KindUser }
func (Stat) Kind() Kind          { return KindStat }
func (Ad) Kind() Kind            { return KindAd }
func (Footer) Kind() Kind        { return KindFooter }

func (SectionHeader) sealed() {}
func (Banner) sealed()        {}
func (Article) sealed()       {}
func (User) sealed()          {}
func (Stat) sealed()          {}
func (Ad) sealed()            {}
func (Footer) sealed()        {}

// ClickLabel returns the label reported when e is activated. Only banners,
// articles and users are clickable.
func ClickLabel(e Entry) (string, bool) {
	switch v := e.(type) {
	case Banner:
		return v.Title, true
	case Article:
		return v.Title, true
	case User:
		return v.Name, true
	default:
		return "", false
	}
}
