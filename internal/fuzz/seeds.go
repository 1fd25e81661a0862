package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"rbfmt/internal/driver"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 16 << 10
)

// rubySeeds cover the constructs with dedicated layout rules.
var rubySeeds = []string{
	"foo(a,b)\n",
	"def foo(a, b = 1, *rest, key:, **opts, &blk)\n  bar\nend\n",
	"class Foo < Bar\n  # comment\n\n\n  def x; end\nend\n",
	"items.map { |x| x * 2 }.select(&:even?).reduce(0) { |s, x| s + x }\n",
	"x = <<~SQL\n  SELECT *\n    FROM t\nSQL\n",
	"[1, 2, 3].each do |i|\n  puts i # trailing\nend\n",
	"h = { a: 1, 'b' => 2 }\n",
	"case x\nwhen 1 then :one\nelse nil\nend\n",
	"begin\n  risky\nrescue Foo, Bar => e\n  retry\nensure\n  done\nend\n",
	"f = ->(x) { x + 1 }\n",
	"a&.b&.c(1)\n",
}

// edgeSeeds are odd inputs that only need to finish, not to round-trip.
var edgeSeeds = []string{
	"",
	"case x\nwhen 1 then :one\nin [a, *] then a\nend\n",
	"puts 'a' if cond unless other\n",
	"=begin\nblock comment\n=end\nx = 1\n",
	"x = 1\n__END__\nraw data\n",
	"x = <<-EOS\n\tkeep\n  EOS\n",
	"call(<<~A, <<~B)\n  a\nA\n  b\nB\n",
	"def (\n",
	"\xff\xfe\x00",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range rubySeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все ruby файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !driver.IsRubyFile(path) {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
