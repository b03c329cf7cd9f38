/*
Package store keeps one value of type T in memory, backed by a file on disk.

A Store is loaded once at startup. If its file does not exist yet, a seed
value is produced (the type's default, a getter, or a Fetcher) and written
before the Store is returned, so disk and memory start out identical.

Write persists first and swaps the in-memory value only after the file was
replaced successfully; memory never runs ahead of disk. Readers share a
read lock, obtained through Read, View or Snapshot. A ReadGuard must be
released before the same goroutine writes to the Store.

ScheduleUpdates refreshes the value periodically from a Fetcher. The refresh
loop runs as a shutdown.Coordinator task and stops with it.

# Usage

	s, err := store.NewWithDefault("/var/lib/app/catalog.json", codec.JSON[Catalog]{})
	if err != nil {
		return err
	}

	s.ScheduleUpdates(coord, fetcher, 3*time.Minute)

	err = s.View(func(c Catalog) error {
		fmt.Println(len(c.Entries))
		return nil
	})
*/
package store
