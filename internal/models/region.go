package models

// Region is one node of the administrative hierarchy. A nil Children slice
// means the node has no further subdivision.
type Region struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Children []Region `json:"children,omitempty"`
}
