package provider

// Reserved keys and prefixes of the persisted layout.
const (
	KeyLatestTag = "latest_tag"
	KeyLastCheck = "last_check"

	PrefixDeploy = "deploy_"
	PrefixManual = "manual_"

	LockCheck = "check"
)

// EventKey joins a log prefix and a time-ordered id.
func EventKey(prefix, id string) string { return prefix + id }
