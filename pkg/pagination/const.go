package pagination

// PageDefaultSize is the page size used when none is requested
const PageDefaultSize = 20

// PageMaxSize is the largest page a client may request
const PageMaxSize = 100
