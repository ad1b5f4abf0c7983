package model

// Identity is an opaque caller token, such as a principal address. It is only
// ever compared for equality.
type Identity string
