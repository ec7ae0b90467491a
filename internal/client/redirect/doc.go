// Package redirect turns a classified payload into an external action and
// schedules capture resumption.
//
// Payment payloads are rewritten into a wallet deep link that keeps the
// original query pairs in order and appends one source marker. When the
// wallet is not installed the user is asked whether to install it. Web
// links are opened as is and free text becomes a search query.
//
// Every call to Resolver.Resolve resumes capture exactly once: immediately
// when the user cancels the install prompt or the payload is unusable, and
// after Config.ResumeDelay otherwise, whether or not the open succeeded.
package redirect
