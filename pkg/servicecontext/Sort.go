package servicecontext

import "sort"

import "github.com/coldharbor/rsm/pkg/userservice"


// sortByID orders services by ServiceID ascending, which is also
// registration order since ids are assigned from a monotonic counter.
func sortByID(entries []*userservice.ServiceEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ServiceID < entries[j].ServiceID })
}
