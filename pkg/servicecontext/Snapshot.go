package servicecontext

import "io"

import "golang.org/x/sync/errgroup"

import "github.com/coldharbor/rsm/pkg/snapshotstream"


//=========================================== Snapshotting


/*
	TakeSnapshot takes every live service's sub-snapshot concurrently —
	TakeSnapshot on a user service can be arbitrarily slow for a large
	service, and services don't interact, so there's no reason to
	serialize the calls — then writes them to w in registration order
	regardless of which finished first. The stream's byte layout must
	stay independent of scheduling, or two managers fed identical
	entries could diverge on snapshot bytes.
*/

func (sc *ServiceContext) TakeSnapshot(w io.Writer) error {
	services := sc.Services.All()
	sortByID(services)

	bodies := make([][]byte, len(services))

	group := new(errgroup.Group)
	for i, svcEntry := range services {
		i, svcEntry := i, svcEntry

		group.Go(func() error {
			body, err := svcEntry.Instance.TakeSnapshot()
			if err != nil { return err }

			bodies[i] = body
			return nil
		})
	}

	if err := group.Wait(); err != nil { return err }

	for i, svcEntry := range services {
		rec := snapshotstream.Record{
			ServiceID: svcEntry.ServiceID,
			ServiceType: svcEntry.Type,
			ServiceName: svcEntry.ServiceName,
			Body: bodies[i],
		}

		if err := snapshotstream.WriteRecord(w, rec); err != nil { return err }
	}

	return nil
}

/*
	InstallSnapshot reads every record from r and, for each, replaces
	whatever service currently owns that name with a freshly-materialized
	instance under a new ServiceId, purging the prior owner's sessions,
	then hands the service its sub-snapshot body to restore.
*/

func (sc *ServiceContext) InstallSnapshot(r io.Reader) error {
	records, readErr := snapshotstream.ReadAll(r)
	if readErr != nil { return readErr }

	for _, rec := range records {
		fresh, prior, err := sc.Services.InstallForSnapshot(rec.ServiceName, rec.ServiceType)
		if err != nil { return err }

		if prior != nil {
			for _, orphan := range sc.Sessions.RemoveByService(prior.ServiceID) {
				Log.Info("purged orphaned session", orphan.SessionID, "on snapshot install of", rec.ServiceName)
			}
		}

		if err := fresh.Instance.InstallSnapshot(rec.Body); err != nil { return err }
	}

	return nil
}
