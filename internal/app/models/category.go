package models

import "strings"

// Category is a position in the three level interest taxonomy.
type Category struct {
	Major  string `json:"major"`
	Middle string `json:"middle,omitempty"`
	Minor  string `json:"minor,omitempty"`
}

// Normalize trims every level and drops lower levels that hang off an
// empty parent.
func (c Category) Normalize() Category {
	c.Major = strings.TrimSpace(c.Major)
	c.Middle = strings.TrimSpace(c.Middle)
	c.Minor = strings.TrimSpace(c.Minor)
	if c.Major == "" {
		c.Middle = ""
	}
	if c.Middle == "" {
		c.Minor = ""
	}
	return c
}

// CategoryNode is one entry of the taxonomy tree.
type CategoryNode struct {
	Name     string         `json:"name"`
	Children []CategoryNode `json:"children,omitempty"`
}

func leaves(names ...string) []CategoryNode {
	out := make([]CategoryNode, len(names))
	for i, n := range names {
		out[i] = CategoryNode{Name: n}
	}
	return out
}

var taxonomy = []CategoryNode{
	{Name: "IT", Children: []CategoryNode{
		{Name: "Software", Children: leaves("Backend", "Frontend", "Mobile", "Game")},
		{Name: "Data", Children: leaves("Data Engineering", "Data Analysis", "Machine Learning")},
		{Name: "Infrastructure", Children: leaves("Cloud", "Security", "Network")},
	}},
	{Name: "Business", Children: []CategoryNode{
		{Name: "Marketing", Children: leaves("Digital Marketing", "Brand", "Content")},
		{Name: "Finance", Children: leaves("Accounting", "Investment", "Banking")},
		{Name: "Management", Children: leaves("Strategy", "HR", "Operations")},
	}},
	{Name: "Design", Children: []CategoryNode{
		{Name: "Visual", Children: leaves("Graphic", "Illustration", "Motion")},
		{Name: "Product", Children: leaves("UX", "UI", "Industrial")},
	}},
	{Name: "Science", Children: []CategoryNode{
		{Name: "Natural Science", Children: leaves("Physics", "Chemistry", "Biology")},
		{Name: "Engineering", Children: leaves("Mechanical", "Electrical", "Civil")},
	}},
	{Name: "Healthcare", Children: []CategoryNode{
		{Name: "Medicine", Children: leaves("Doctor", "Pharmacy", "Nursing")},
		{Name: "Wellness", Children: leaves("Counseling", "Fitness", "Nutrition")},
	}},
	{Name: "Education", Children: []CategoryNode{
		{Name: "Teaching", Children: leaves("Elementary", "Secondary", "Higher Education")},
		{Name: "Edtech", Children: leaves("Curriculum", "Instructional Design")},
	}},
	{Name: "Arts", Children: []CategoryNode{
		{Name: "Performing", Children: leaves("Music", "Theater", "Dance")},
		{Name: "Media", Children: leaves("Film", "Broadcasting", "Writing")},
	}},
}

// Taxonomy returns a copy of the static category tree.
func Taxonomy() []CategoryNode {
	return copyNodes(taxonomy)
}

func copyNodes(nodes []CategoryNode) []CategoryNode {
	if nodes == nil {
		return nil
	}
	out := make([]CategoryNode, len(nodes))
	for i, n := range nodes {
		out[i] = CategoryNode{Name: n.Name, Children: copyNodes(n.Children)}
	}
	return out
}

func findNode(nodes []CategoryNode, name string) *CategoryNode {
	for i := range nodes {
		if nodes[i].Name == name {
			return &nodes[i]
		}
	}
	return nil
}

// ValidCategory reports whether c names a path of the taxonomy. Major is
// required when requireMajor is set; lower levels are optional but must
// belong to the level above.
func ValidCategory(c Category, requireMajor bool) bool {
	c.Major = strings.TrimSpace(c.Major)
	c.Middle = strings.TrimSpace(c.Middle)
	c.Minor = strings.TrimSpace(c.Minor)
	if c.Middle == "" && c.Minor != "" {
		return false
	}
	if c.Major == "" {
		return !requireMajor && c.Middle == "" && c.Minor == ""
	}
	major := findNode(taxonomy, c.Major)
	if major == nil {
		return false
	}
	if c.Middle == "" {
		return true
	}
	middle := findNode(major.Children, c.Middle)
	if middle == nil {
		return false
	}
	if c.Minor == "" {
		return true
	}
	return findNode(middle.Children, c.Minor) != nil
}
