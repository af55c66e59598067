// Package kotoba localizes game content pack language files.
//
// Kotoba rewrites every display string of a flat key → string resource file
// through an ordered chain of stages: dictionary-backed machine translation,
// terminology-consistency enforcement, kanji → kana script simplification,
// and platform line-break formatting. A persisted terminology dictionary
// guarantees that the same source term renders identically across every file
// and every run.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/kotonoha-dev/kotoba"
//	    "github.com/kotonoha-dev/kotoba/dict"
//	    "github.com/kotonoha-dev/kotoba/provider"
//	    "github.com/kotonoha-dev/kotoba/resource"
//	)
//
//	func main() {
//	    store, _ := dict.NewFileStore("dictionary.json")
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    simplifier, _ := kotoba.NewSimplifier()
//	    pipe := kotoba.New("ja_JP", store, p,
//	        kotoba.WithInterval(3*time.Second),
//	        kotoba.WithSimplifier(simplifier),
//	    )
//
//	    file, _ := resource.LoadFile("en_us.json")
//	    report, err := pipe.Run(context.Background(), file)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = file.SaveFile("ja_jp.json")
//	    fmt.Printf("translated %d, from dictionary %d, failed %d\n",
//	        report.Translated, report.FromDictionary, len(report.Failures))
//	}
package kotoba
