// internal/model/keyword.go
package model

// Keyword is one matching rule owned by exactly one category. Value is unique
// across ALL keywords (case-insensitive), not just within its category. The
// scope flags pick which campaign text fields the keyword searches.
type Keyword struct {
	ID            int    `db:"id" json:"id"`
	CategoryID    int    `db:"category_id" json:"category_id"`
	Value         string `db:"value" json:"value"`
	Rank          int    `db:"rank" json:"rank"`
	ScopeName     bool   `db:"scope_name" json:"scope_name"`
	ScopeSubject  bool   `db:"scope_subject" json:"scope_subject"`
	ScopeContent  bool   `db:"scope_content" json:"scope_content"`
	ScopeListName bool   `db:"scope_listname" json:"scope_listname"`
}
