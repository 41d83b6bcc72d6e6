package seedfile

// Entry is a single bookmark row in the seed file.
type Entry struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title"`
}

// OwnerBlock groups seed entries under the user they belong to.
type OwnerBlock struct {
	Owner     string  `yaml:"owner"`
	Bookmarks []Entry `yaml:"bookmarks"`
}

// SeedConfig is the root structure of the seed YAML file:
//
//	owners:
//	  - owner: "user-id"
//	    bookmarks:
//	      - url: https://example.com
//	        title: Example
type SeedConfig struct {
	Owners []OwnerBlock `yaml:"owners"`
}
