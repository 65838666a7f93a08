package feedcache

// Cache partitions. Matching reads one partition per race kind; the women
// and cyclocross categories feed the classics partition because their items
// are dated and matched like one-day races.
const (
	PartitionClassics = "classics"
	PartitionStages   = "stages"
)

// Category describes one refreshable feed selection: which upstream feed
// slugs it aggregates and which cache partition it lands in.
type Category struct {
	Key       string
	Partition string
	Slugs     []string
}

var categories = []Category{
	{Key: "classics", Partition: PartitionClassics, Slugs: []string{"classics"}},
	{Key: "stages", Partition: PartitionStages, Slugs: []string{"stage-races", "grand-tour"}},
	{Key: "women", Partition: PartitionClassics, Slugs: []string{"women", "world-championship", "continental-championship"}},
	{Key: "cyclocross", Partition: PartitionClassics, Slugs: []string{"cyclocross"}},
}

// Categories returns every refreshable category.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryByKey looks up a category by its key.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Partitions returns the distinct cache partition keys.
func Partitions() []string {
	return []string{PartitionClassics, PartitionStages}
}
