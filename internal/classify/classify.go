// Package classify maps free-text queries to one of a fixed set of profile
// information topics via keyword scoring. The keyword tables are data, not
// code: the classifier is a pure function over the query and the table.
package classify

import "strings"

// Category is one of the fixed topics a query can be about.
type Category string

const (
	Education      Category = "education"
	Experience     Category = "experience"
	Skills         Category = "skills"
	Languages      Category = "languages"
	Certifications Category = "certifications"
	Location       Category = "location"
	Contact        Category = "contact"
	General        Category = "general"
)

// categoryKeywords is an ordered table: when two categories score the same
// nonzero count, the earlier entry wins. The order is part of the contract
// and must not be reshuffled.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{Education, []string{
		"education", "degree", "university", "college", "school",
		"study", "studied", "graduate", "graduated", "qualification",
		"academic", "diploma", "bachelor", "master", "phd", "doctorate",
	}},
	{Experience, []string{
		"experience", "work", "job", "position", "employment", "career",
		"company", "organization", "industry", "role", "worked",
		"working", "professional",
	}},
	{Skills, []string{
		"skill", "expertise", "proficiency", "capability", "competency",
		"talent", "ability", "know", "knows", "proficient", "capable",
		"experienced in",
	}},
	{Languages, []string{
		"language", "speak", "speaking", "fluent", "proficient",
		"native", "bilingual", "multilingual",
	}},
	{Certifications, []string{
		"certification", "certificate", "certified", "credential",
		"qualification", "license", "accreditation",
	}},
	{Location, []string{
		"location", "located", "live", "lives", "based", "residing",
		"residence", "city", "country", "address", "area",
	}},
	{Contact, []string{
		"contact", "email", "phone", "website", "connect", "reach",
		"social media", "linkedin", "twitter",
	}},
	{General, []string{
		"about", "profile", "background", "summary", "overview",
		"introduction", "who is", "tell me about", "information",
	}},
}

// Classify returns the category whose trigger keywords occur most often in
// the query. A phrase containing another counts independently. When no
// keyword matches, the answer is General.
func Classify(query string) Category {
	q := strings.ToLower(query)

	best := General
	max := 0
	for _, entry := range categoryKeywords {
		count := 0
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				count++
			}
		}
		if count > max {
			max = count
			best = entry.category
		}
	}
	return best
}
