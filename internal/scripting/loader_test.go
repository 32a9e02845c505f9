package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go-dialog/internal/grammar"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func writeGrammarArtifact(t *testing.T, dir string, grammars ...*grammar.Grammar) string {
	t.Helper()
	path := filepath.Join(dir, "grammars.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	defer f.Close()
	if err := grammar.WriteArtifact(f, grammars); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

const mainDoc = `
constants:
  botname: Вика

greeting:
  - Привет, я $botname!
  - Здравствуй!

order_not_understood:
  - Не поняла приказ.

common_phrases:
  - я люблю виноград

replica_grammar: chitchat

rules:
  - rule:
      name: name_question
      if:
        raw_text: как тебя зовут?
      then:
        say: Меня зовут $botname
  - file: extra_rules.yaml

story_rules:
  - story_rule:
      name: after_age_question
      switch:
        when:
          prev_bot_text: сколько тебе лет?
        then:
          say: Понятно.
  - story_rule:
      name: after_secret
      if:
        raw_text: это секрет
      then:
        nothing: true

smalltalk_rules:
  - rule:
      if:
        text: я люблю кошек
      then:
        say:
          - а я люблю собак
          - кошки это чудесно
  - rule:
      if:
        intent: abracadabra
      then:
        generate: chitchat

comprehension_rules:
  - rule:
      anchor: как тебя зовут?
      variants:
        - назови свое имя
        - представься пожалуйста
`

const extraRulesDoc = `
rules:
  - rule:
      name: silence_order
      if:
        intent: keep_silence
      then:
        nothing: true
`

func TestLoadFullDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra_rules.yaml", extraRulesDoc)
	rulesPath := writeFile(t, dir, "rules.yaml", mainDoc)
	artifact := writeGrammarArtifact(t, dir, &grammar.Grammar{
		Key:         "chitchat",
		Productions: []grammar.Production{{Template: "а ты любишь $seed?", Weight: 1}},
	})

	repo, err := NewLoader().Load(rulesPath, artifact)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(repo.Greetings) != 2 || repo.Greetings[0] != "Привет, я Вика!" {
		t.Errorf("constants not substituted in greeting: %v", repo.Greetings)
	}
	if len(repo.InsteadofRules) != 2 {
		t.Fatalf("insteadof rules = %d, want 2 (inline + included)", len(repo.InsteadofRules))
	}
	if repo.InsteadofRules[0].Name != "name_question" || repo.InsteadofRules[1].Name != "silence_order" {
		t.Errorf("rule order lost: %q, %q", repo.InsteadofRules[0].Name, repo.InsteadofRules[1].Name)
	}
	if repo.InsteadofRules[0].Act.Say[0] != "Меня зовут Вика" {
		t.Errorf("constants not substituted in action: %v", repo.InsteadofRules[0].Act.Say)
	}
	if !repo.InsteadofRules[1].Act.Silent {
		t.Errorf("nothing action must compile to Silent")
	}

	if got := repo.Story.ByBotPhrase("Сколько тебе ЛЕТ?"); len(got) != 1 || got[0].Name != "after_age_question" {
		t.Errorf("bot-keyed story lookup failed: %v", got)
	}
	if got := repo.Story.ByHumanPhrase("это секрет"); len(got) != 1 || got[0].Name != "after_secret" {
		t.Errorf("human-keyed story lookup failed: %v", got)
	}

	if len(repo.Smalltalk) != 2 {
		t.Fatalf("smalltalk rules = %d", len(repo.Smalltalk))
	}
	gen := repo.Smalltalk[1]
	if !gen.IsGenerator() || gen.Grammar.Key != "chitchat" {
		t.Errorf("grammar not bound: %+v", gen)
	}

	if repo.ReplicaGrammar == nil || repo.ReplicaGrammar.Key != "chitchat" {
		t.Errorf("replica grammar not bound: %+v", repo.ReplicaGrammar)
	}

	if anchor, ok := repo.Comprehension.AnchorFor("назови свое имя"); !ok || anchor != "как тебя зовут?" {
		t.Errorf("comprehension anchor lookup failed: %q %v", anchor, ok)
	}
}

func TestLoadFailsAtomicallyOnBadInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra_rules.yaml", `
rules:
  - rule:
      name: broken
      if:
        text: а
        intent: б
      then:
        say: в
`)
	rulesPath := writeFile(t, dir, "rules.yaml", mainDoc)

	repo, err := NewLoader().Load(rulesPath, "")
	if err == nil {
		t.Fatalf("expected load failure for rule with two conditions")
	}
	if repo != nil {
		t.Errorf("failed load must not return a partial repository")
	}
}

func TestLoadFailsOnMissingGrammarKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "extra_rules.yaml", extraRulesDoc)
	rulesPath := writeFile(t, dir, "rules.yaml", mainDoc)
	artifact := writeGrammarArtifact(t, dir) // no chitchat grammar

	if _, err := NewLoader().Load(rulesPath, artifact); err == nil {
		t.Fatalf("generator rule without compiled grammar must fail the load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"), ""); err == nil {
		t.Fatalf("expected error for missing rules file")
	}
}

func TestComprehensionFirstRegistrationWins(t *testing.T) {
	table := NewComprehensionTable()
	table.Add("как тебя зовут?", "представься")
	table.Add("сколько тебе лет?", "представься")
	if got, ok := table.AnchorFor("представься"); !ok || got != "как тебя зовут?" {
		t.Errorf("AnchorFor = %q, want first registration", got)
	}
	if len(table.Variants()) != 1 {
		t.Errorf("duplicate variant must register once: %v", table.Variants())
	}
}
