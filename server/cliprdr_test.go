package server

import "testing"

func TestMemoryClipboardFansOut(t *testing.T) {
	clip := NewMemoryClipboard()
	a := clip.BuildCliprdrBackend()
	b := clip.BuildCliprdrBackend()

	a.OnRemoteCopy(ClipboardContent{MimeType: "text/plain", Data: []byte("one")})
	select {
	case got := <-b.Updates():
		if string(got.Data) != "one" {
			t.Fatalf("b got %q", got.Data)
		}
	default:
		t.Fatalf("b was not offered the copy")
	}
	select {
	case got := <-a.Updates():
		t.Fatalf("a was offered its own copy %q", got.Data)
	default:
	}

	clip.Copy(ClipboardContent{Data: []byte("two")})
	clip.Copy(ClipboardContent{Data: []byte("three")})
	if got := <-a.Updates(); string(got.Data) != "three" {
		t.Fatalf("a got %q, want the latest selection", got.Data)
	}

	b.Close()
	b.Close()
	if _, open := <-b.Updates(); open {
		t.Fatalf("updates not closed")
	}
	b.OnRemoteCopy(ClipboardContent{Data: []byte("ignored")})
	if content, _ := clip.Content(); string(content.Data) != "three" {
		t.Fatalf("closed backend changed the clipboard to %q", content.Data)
	}
}
