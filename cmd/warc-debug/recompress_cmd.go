package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	warcdebug "github.com/kb-dk/warc-debug"
)

func init() {
	rootCmd.AddCommand(recompressCmd())
}

func recompressCmd() *cobra.Command {
	var outputPath string
	var blockSize int64
	var rsyncable bool
	var level int

	cmd := &cobra.Command{
		Use:   "recompress <file>",
		Short: "Rewrite a gzip file as a proper multi-member stream",
		Long: `Recompress decompresses a gzip file and re-emits it as a multi-member
stream, placing one gzip member per WARC record where a record header is
found and falling back to a fixed block size elsewhere. The result
decompresses to the same bytes but supports random access to individual
records without touching the rest of the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath := args[0]
			if outputPath == "" {
				outputPath = inPath + ".recompressed.gz"
			}

			in, err := os.Open(inPath)
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()

			split := warcdebug.SplitByWARCRecord()
			if rsyncable {
				split = warcdebug.SplitRsyncable()
			}
			if blockSize > 0 && !rsyncable {
				split = warcdebug.SplitByFixedBlock(blockSize)
			}

			if err := warcdebug.Recompress(out, in, level, split); err != nil {
				os.Remove(outputPath)
				return fmt.Errorf("recompressing %s: %w", inPath, err)
			}

			fmt.Printf("wrote %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: <input>.recompressed.gz)")
	cmd.Flags().Int64Var(&blockSize, "block-size", 0, "Split on a fixed uncompressed byte budget instead of WARC record boundaries")
	cmd.Flags().BoolVar(&rsyncable, "rsyncable", false, "Split at content-dependent offsets instead of WARC record boundaries")
	cmd.Flags().IntVarP(&level, "level", "l", -1, "gzip compression level (-1 for the library default)")

	return cmd
}
