package ir

// IRVersion is the version of the snapshot schema produced by Snapshot.
const IRVersion = "1"
