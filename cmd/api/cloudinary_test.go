package main

import "testing"

func TestExtractPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712345678/products/product_4_ab12cd34.jpg": "products/product_4_ab12cd34",
		"https://res.cloudinary.com/demo/image/upload/products/product_9_ffee0011.webp":          "products/product_9_ffee0011",
	}
	for in, want := range cases {
		got, err := extractPublicIDFromURL(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: got %q, want %q", in, got, want)
		}
	}

	if _, err := extractPublicIDFromURL("https://example.com/picture/1.jpg"); err == nil {
		t.Fatal("expected error for non-upload path")
	}
	if isCloudinaryURL("picture/1.jpg") {
		t.Fatal("placeholder path reported as cloudinary url")
	}
}
