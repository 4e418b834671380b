package app

import "github.com/spf13/pflag"

// Command flag defaults that are not settings
const (
	DefaultSampleCount = 100
	DefaultSampleRoot  = "samples"
	DefaultParallel    = 2
)

// RegisterGlobalFlags registers flags shared by every command
func RegisterGlobalFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "", "Log level: debug, info, warn or error (default info)")
	flags.String("log-format", "", "Log format: text or json (default text)")
}

// RegisterCorpusFlags registers the flags that select corpus documents
func RegisterCorpusFlags(flags *pflag.FlagSet) {
	flags.StringP("corpus-root", "r", "", "Root of the directory tree to search for documents (default .)")
	flags.StringP("extension", "e", "", "Extension of documents to process (default .xml)")
	flags.StringSliceP("exclude", "x", nil, "Glob patterns of paths to skip, relative to the corpus root (comma-separated)")
}

// RegisterCollectFlags registers the flags of the collect and batch commands
func RegisterCollectFlags(flags *pflag.FlagSet) {
	RegisterCorpusFlags(flags)
	flags.IntP("max-vocabulary", "m", 0, "Distinct values per tag before the tag is dropped (default 200)")
	flags.IntP("workers", "w", 0, "Number of documents processed concurrently (default number of CPUs)")
	flags.Int("progress-every", 0, "Log progress every N documents (default 100)")
}

// RegisterBatchFlags registers the flags of the batch command
func RegisterBatchFlags(flags *pflag.FlagSet) {
	RegisterCollectFlags(flags)
	flags.StringP("output-dir", "o", "", "Directory in which artifacts are written (default .)")
	flags.IntP("parallel", "p", DefaultParallel, "Number of presets collected concurrently")
}

// RegisterReportFlags registers the report filter flags
func RegisterReportFlags(flags *pflag.FlagSet) {
	flags.IntP("values", "v", 0, "Only print tags with at least this many distinct values")
	flags.IntP("occurrences", "n", 0, "Only print values with at least this many occurrences")
	flags.IntP("length", "l", 0, "Only print values with at most this many characters, 0 or less for no limit (default 100)")
	flags.IntP("top", "t", 0, "Only print the N most frequent values of each tag, 0 for all")
}

// RegisterQueryFlags registers the flags of the query command
func RegisterQueryFlags(flags *pflag.FlagSet) {
	flags.Bool("only-text", false, "Only print matches which have text content")
	flags.StringP("field", "f", "", "Selector evaluated relative to each match; its first result is printed")
}

// RegisterMergeFlags registers the flags of the merge command
func RegisterMergeFlags(flags *pflag.FlagSet) {
	flags.IntP("max-vocabulary", "m", 0, "Distinct values per tag before the tag is dropped (default 200)")
}

// RegisterSampleFlags registers the flags of the sample command
func RegisterSampleFlags(flags *pflag.FlagSet) {
	RegisterCorpusFlags(flags)
	flags.StringP("sample-root", "s", DefaultSampleRoot, "Directory in which to create the symlinks, created if it does not exist")
	flags.Uint64("seed", 0, "Random seed for a reproducible sample, 0 for a random one")
}

// RegisterLookupFlags registers the flags of the lookup command
func RegisterLookupFlags(flags *pflag.FlagSet) {
	flags.StringP("tag", "g", "", "Only return values of this tag")
	flags.IntP("limit", "n", 0, "Maximum number of values returned (default 20)")
}
