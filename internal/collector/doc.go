// Package collector runs a day's collection: discover the venues holding races,
// fetch every race's result and odds pages, and gather the records into a Batch.
//
// Races run one at a time by default. With more workers they run concurrently, but
// every request still waits on the shared pacer, and the batch keeps venue then race
// order regardless of which race finished first. Fetch failures are logged and counted;
// they never stop the run. A cancelled context stops new races from starting and the
// records gathered so far are returned.
package collector
