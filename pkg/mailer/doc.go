// Package mailer sends transactional email written in Markdown.
//
// A [Mailer] renders the body with pkg/markdown, fills the sender address
// and hands the [Email] to a [Sender]. The resend subpackage provides the
// production Sender; [Noop] is used when no API key is configured.
package mailer
