package ratelimit

import (
	"strconv"
	"strings"
	"time"

	"github.com/applytrack/applytrack/internal/domain/quota"
)

// KeyBuilder derives counter keys. Layout:
//
//	<prefix>:rl:v1:<subjectKind>:<escapedSubject>:<feature>:<windowType>:<windowMs>[:<bucketStartMs>]
//
// Subject values are escaped so they cannot contain the separator; every
// other segment comes from a closed enum or a number. Two keys are equal
// only if every component is equal. The tier is not part of the key: a
// user who upgrades keeps their history and is judged against the new
// limit.
type KeyBuilder struct {
	prefix string
}

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func NewKeyBuilder(prefix string) KeyBuilder {
	if prefix == "" {
		prefix = "applytrack"
	}
	return KeyBuilder{prefix: keyEscaper.Replace(prefix)}
}

func (b KeyBuilder) Build(subject quota.Subject, policy quota.Policy, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(b.prefix)
	sb.WriteString(":rl:v1:")
	sb.WriteString(string(subject.Kind))
	sb.WriteByte(':')
	sb.WriteString(keyEscaper.Replace(subject.Value))
	sb.WriteByte(':')
	sb.WriteString(string(policy.Feature))
	sb.WriteByte(':')
	sb.WriteString(string(policy.WindowType))
	sb.WriteByte(':')
	sb.WriteString(strconv.FormatInt(policy.Window.Milliseconds(), 10))
	if policy.WindowType == quota.WindowFixed {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatInt(FixedWindowStart(now, policy.Window).UnixMilli(), 10))
	}
	return sb.String()
}
