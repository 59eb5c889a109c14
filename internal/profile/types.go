package profile

// Record is the stored knowledge about one person: a structured snapshot of
// their professional background, persisted as one JSON document per profile.
type Record struct {
	Identifier      string           `json:"profile_id"`
	Basics          Basics           `json:"basics"`
	ContactInfo     *ContactInfo     `json:"contact_info,omitempty"`
	Experience      []Experience     `json:"experience,omitempty"`
	Education       []Education      `json:"education,omitempty"`
	Skills          []string         `json:"skills,omitempty"`
	Languages       []Language       `json:"languages,omitempty"`
	Certifications  []Certification  `json:"certifications,omitempty"`
	Projects        []Project        `json:"projects,omitempty"`
	Publications    []Publication    `json:"publications,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// Basics holds the headline identity fields. Name is the only required field.
type Basics struct {
	Name       string `json:"name"`
	Headline   string `json:"headline,omitempty"`
	Location   string `json:"location,omitempty"`
	Summary    string `json:"summary,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	CapturedAt string `json:"captured_at,omitempty"`
}

type ContactInfo struct {
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Websites []string `json:"websites,omitempty"`
	Twitter  string   `json:"twitter,omitempty"`
}

// Experience entries are stored most recent first. The synthesizer relies on
// that ordering for "current" and "previous" semantics.
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education entries follow the same most-recent-first convention; the head of
// the list is treated as the highest degree.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	DateRange   string `json:"date_range,omitempty"`
	Description string `json:"description,omitempty"`
}

type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Publication struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`
	Date      string `json:"date,omitempty"`
	URL       string `json:"url,omitempty"`
}

type Recommendation struct {
	Author       string `json:"author"`
	Relationship string `json:"relationship,omitempty"`
	Text         string `json:"text,omitempty"`
}
