package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"

	"spec-synth/internal/javaparser"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src/main/java/A.java"), []byte("class A {}"))
	writeFile(t, filepath.Join(root, "src/main/java/B.JAVA"), []byte("class B {}"))
	writeFile(t, filepath.Join(root, "src/main/java/notes.txt"), []byte("x"))
	writeFile(t, filepath.Join(root, "src/test/java/ATest.java"), []byte("class ATest {}"))
	writeFile(t, filepath.Join(root, "target/Gen.java"), []byte("class Gen {}"))

	files, err := ScanDirectory(root, []string{"**/test/**", "**/target/**"}, ".java")
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	if !strings.HasSuffix(files[0], "A.java") {
		t.Errorf("expected sorted output, got %v", files)
	}
}

func TestScanDirectoryMissingRoot(t *testing.T) {
	files, err := ScanDirectory(filepath.Join(t.TempDir(), "nope"), nil, "")
	if err != nil || files != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", files, err)
	}
}

func TestDecode(t *testing.T) {
	utf := "// 주문 조회\nclass A {}"
	if got := Decode(append([]byte{0xEF, 0xBB, 0xBF}, utf...), nil); got != utf {
		t.Errorf("BOM not stripped: %q", got)
	}

	euckr, err := korean.EUCKR.NewEncoder().Bytes([]byte(utf))
	if err != nil {
		t.Fatal(err)
	}
	if got := Decode(euckr, []string{"utf-8", "euc-kr"}); got != utf {
		t.Errorf("EUC-KR decode failed: %q", got)
	}

	latin := "// café\nclass B {}"
	cp1252, err := charmap.Windows1252.NewEncoder().Bytes([]byte(latin))
	if err != nil {
		t.Fatal(err)
	}
	if got := Decode(cp1252, []string{"windows-1252"}); got != latin {
		t.Errorf("windows-1252 decode failed: %q", got)
	}
}

func TestReadSourceKeepsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.java")
	writeFile(t, path, []byte("/** doc */\nclass A { // note\n}"))

	src, err := ReadSource(path, nil)
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if !strings.Contains(src, "/** doc */") || !strings.Contains(src, "// note") {
		t.Errorf("comments were stripped: %q", src)
	}
}

func TestParseTreeSkipsBadFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Good.java"), []byte("public class Good { private int a; }"))
	writeFile(t, filepath.Join(root, "Bad.java"), []byte("public class Bad { void x( }"))

	var seen int
	tree, err := ParseTree(root, Options{OnFile: func(string) { seen++ }})
	if err != nil {
		t.Fatalf("ParseTree failed: %v", err)
	}
	if seen != 2 || tree.Files != 2 {
		t.Errorf("expected 2 files visited, got %d/%d", seen, tree.Files)
	}
	if len(tree.Units) != 1 || len(tree.Diagnostics) != 1 {
		t.Errorf("expected 1 unit and 1 diagnostic, got %d and %d", len(tree.Units), len(tree.Diagnostics))
	}
	if tree.Diagnostics[0].File != "Bad.java" {
		t.Errorf("diagnostic should name the relative path, got %q", tree.Diagnostics[0].File)
	}
}

func TestBodyNotes(t *testing.T) {
	toks, err := javaparser.Tokenize(`{
		// check stock
		// check stock
		/* FIXME: race */
		// TODO
		return;
	}`)
	if err != nil {
		t.Fatal(err)
	}
	var comments []javaparser.Comment
	for _, tok := range toks {
		comments = append(comments, tok.Comments...)
	}
	notes, todos := bodyNotes(comments)
	if len(notes) != 1 || notes[0] != "check stock" {
		t.Errorf("unexpected notes %v", notes)
	}
	if len(todos) != 2 || todos[0] != "race" || todos[1] != "pending" {
		t.Errorf("unexpected todos %v", todos)
	}
}
