package model

type Owner struct {
	Login string `json:"login"`
}

// Repository is an organization repository as returned by the repos listing.
// Identity is FullName.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    Owner  `json:"owner"`
	Archived bool   `json:"archived"`
}
