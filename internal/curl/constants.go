package curl

// Words that may precede curl on a copied shell line.
const (
	cmdCurl    = "curl"
	cmdSudo    = "sudo"
	cmdEnv     = "env"
	cmdCommand = "command"
	cmdTime    = "time"
	cmdNoGlob  = "noglob"
)

var promptPrefixes = []string{"$", "%", ">", "!"}

const (
	headerAuthorization  = "Authorization"
	headerContentType    = "Content-Type"
	headerAccept         = "Accept"
	headerAcceptEncoding = "Accept-Encoding"
	headerUserAgent      = "User-Agent"
	headerReferer        = "Referer"
	headerCookie         = "Cookie"
)

const (
	mimeJSON       = "application/json"
	defaultEncode  = "gzip, deflate, br"
	urlQuoteChars  = "\"'"
	bodySeparator  = "&"
	nextSegmentMsg = "only the first --next segment is imported"
)

// Flag names as exposed in Parsed.Flags. Long aliases fold onto these.
const (
	FlagRequest = "X"
	FlagUser    = "u"
	FlagGet     = "G"
)
