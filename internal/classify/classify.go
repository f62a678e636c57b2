// Package classify provides pure content classifiers for tokens and
// spans: file names, hashes, IP addresses, emails, URLs, domains,
// protocol mentions and operating-system phrases. Classifiers assign
// an entity type from the literal text alone; they never look at the
// surrounding labels.
package classify

import (
	"net/url"
	"regexp"
	"strings"
)

// Closed set of file extensions recognized by IsFile.
var fileExtensions = toSet([]string{
	"jpg", "gif", "doc", "pdf", "exe", "docx", "sh", "zip", "tar",
	"mp3", "mp4", "txt", "dat", "bash", "dll", "json", "dcm", "js",
	"java", "py", "php", "html", "css", "mov", "wav", "xsl", "eps",
	"avi", "ppt", "xlsx", "odt", "mid", "mpa", "wma", "aif", "rar",
	"gz", "7z", "arj", "pkg", "rpm", "wpl", "csv", "xml", "sql", "ps",
	"jps", "cer", "pfx", "jsp", "xhtml", "rss", "pptx", "png", "jpeg",
	"md", "bak",
})

// Top-level domains that disqualify a file-extension match, checked
// before the extension set so "update.com" stays a domain.
var excludedTLDs = toSet([]string{"com", "net", "org", "gov", "edu", "fr"})

// Protocol mentions commonly found in CTI reports.
var protocolVocab = toSet([]string{
	"RDP", "SSH", "HTTP", "HTTPS", "TLS", "FTP", "SMTP", "POP3",
	"SFTP", "IMAP", "SSL", "POP", "UDP", "TCP", "IPV4", "IPV6",
	"OPENVPN", "IPSEC", "KERBEROS", "SNMP", "DTLS", "SASE", "TELNET",
})

var (
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	emailPattern = regexp.MustCompile(`\b[-a-zA-Z0-9._%+]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	punctPattern = regexp.MustCompile(`[^\w\s.]+`)
	hexPattern   = regexp.MustCompile(`[a-fA-F0-9]+`)
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// cleanToken strips punctuation other than dots, so "evil.exe," and
// ("evil.exe") classify the same as evil.exe.
func cleanToken(text string) string {
	return punctPattern.ReplaceAllString(text, "")
}

// IsFile reports whether text ends in a known file extension and is
// not disqualified by an excluded top-level domain.
func IsFile(text string) bool {
	cleaned := strings.ToLower(cleanToken(text))
	dot := strings.LastIndexByte(cleaned, '.')
	if dot < 0 || dot == len(cleaned)-1 {
		return false
	}
	ext := cleaned[dot+1:]
	if _, excluded := excludedTLDs[ext]; excluded {
		return false
	}
	_, ok := fileExtensions[ext]
	return ok
}

// Hash algorithm names returned by HashAlgorithm, ordered by digest
// length (32, 40, 64, 128 hex characters).
const (
	HashMD5  = "MD5"
	HashSHA1 = "SHA1"
	HashSHA2 = "SHA2"
	HashSHA3 = "SHA3"
)

// HashAlgorithm classifies a token that contains a hexadecimal run of
// exactly 32, 40, 64 or 128 characters. The algorithm is picked by the
// token's total length: up to 32 is MD5, 33-40 SHA1, 41-64 SHA2, and
// everything longer SHA3. Returns "" when no qualifying run exists.
func HashAlgorithm(text string) string {
	cleaned := cleanToken(text)
	qualifies := false
	for _, run := range hexPattern.FindAllString(cleaned, -1) {
		switch len(run) {
		case 32, 40, 64, 128:
			qualifies = true
		}
	}
	if !qualifies {
		return ""
	}

	switch n := len(text); {
	case n <= 32:
		return HashMD5
	case n <= 40:
		return HashSHA1
	case n <= 64:
		return HashSHA2
	default:
		return HashSHA3
	}
}

// SampleFile composes the file and hash classifiers: file extension
// first, then hash length, then the caller's default type. TypeFile is
// the generic type for extension matches; hash matches return the
// algorithm name itself.
const TypeFile = "FILE"

func SampleFile(text, defaultType string) string {
	if IsFile(text) {
		return TypeFile
	}
	if algo := HashAlgorithm(text); algo != "" {
		return algo
	}
	return defaultType
}

// IsIPv4 reports whether the token contains a dotted-quad address.
func IsIPv4(token string) bool {
	return ipv4Pattern.MatchString(token)
}

// IsEmail reports whether the token contains an RFC-822-shaped address.
func IsEmail(token string) bool {
	return emailPattern.MatchString(token)
}

// IsURL reports whether the token parses with a network authority
// component (scheme://host), which separates real URLs from bare
// domain names.
func IsURL(token string) bool {
	u, err := url.Parse(token)
	return err == nil && u.Host != ""
}

// IsDomain reports whether the token looks like a bare domain name:
// an internal dot and no trailing one.
func IsDomain(token string) bool {
	return strings.Contains(token, ".") && !strings.HasSuffix(token, ".")
}

// IsProtocol reports whether the uppercased token names a protocol.
func IsProtocol(token string) bool {
	_, ok := protocolVocab[strings.ToUpper(token)]
	return ok
}

// Lookup is the membership-test capability reference tables provide.
// The classifier does not care how the table was sourced.
type Lookup interface {
	Contains(value string) bool
}
