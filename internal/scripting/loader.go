package scripting

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"go-dialog/internal/grammar"
)

// LoadError is fatal at startup: the bot must not run on a partial rule
// set, so any malformed record aborts the whole load and nothing from it
// is published.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("scripting load failed (%s): %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// document mirrors the YAML rule-document layout. story_rules and rules
// entries carry either an inline rule or a file reference resolved
// relative to the including document.
type document struct {
	Constants          map[string]string  `yaml:"constants"`
	Greeting           []string           `yaml:"greeting"`
	Goodbye            []string           `yaml:"goodbye"`
	OrderNotUnderstood []string           `yaml:"order_not_understood"`
	Forms              []formEntry        `yaml:"forms"`
	Scenarios          []scenarioEntry    `yaml:"scenarios"`
	StoryRules         []storyRuleEntry   `yaml:"story_rules"`
	Rules              []ruleEntry        `yaml:"rules"`
	SmalltalkRules     []smalltalkEntry   `yaml:"smalltalk_rules"`
	Comprehension      []comprehensionEntry `yaml:"comprehension_rules"`
	CommonPhrases      []string           `yaml:"common_phrases"`
	ReplicaGrammar     string             `yaml:"replica_grammar"`
}

type conditionNode struct {
	Intent  string `yaml:"intent"`
	Text    string `yaml:"text"`
	RawText string `yaml:"raw_text"`
}

type actionNode struct {
	Say     stringList `yaml:"say"`
	Nothing bool       `yaml:"nothing"`
}

type ruleEntry struct {
	Rule *ruleNode `yaml:"rule"`
	File string    `yaml:"file"`
}

type ruleNode struct {
	Name string        `yaml:"name"`
	If   conditionNode `yaml:"if"`
	Then actionNode    `yaml:"then"`
}

type storyRuleEntry struct {
	StoryRule *storyRuleNode `yaml:"story_rule"`
	File      string         `yaml:"file"`
}

type storyRuleNode struct {
	Name   string         `yaml:"name"`
	Switch *switchNode    `yaml:"switch"`
	If     *conditionNode `yaml:"if"`
	Then   actionNode     `yaml:"then"`
}

type switchNode struct {
	When struct {
		PrevBotText string `yaml:"prev_bot_text"`
	} `yaml:"when"`
	Then actionNode `yaml:"then"`
}

type smalltalkEntry struct {
	Rule *smalltalkNode `yaml:"rule"`
}

type smalltalkNode struct {
	If   conditionNode `yaml:"if"`
	Then struct {
		Say      stringList `yaml:"say"`
		Generate string     `yaml:"generate"`
	} `yaml:"then"`
}

type comprehensionEntry struct {
	Rule *comprehensionNode `yaml:"rule"`
}

type comprehensionNode struct {
	Anchor   string   `yaml:"anchor"`
	Variants []string `yaml:"variants"`
}

type formEntry struct {
	Form *struct {
		Name   string `yaml:"name"`
		Fields []struct {
			Name     string `yaml:"name"`
			Question string `yaml:"question"`
		} `yaml:"fields"`
	} `yaml:"form"`
}

type scenarioEntry struct {
	Scenario *struct {
		Name           string           `yaml:"name"`
		Steps          []string         `yaml:"steps"`
		SmalltalkRules []smalltalkEntry `yaml:"smalltalk_rules"`
	} `yaml:"scenario"`
}

// stringList accepts a scalar or a sequence where a pool of phrases is
// expected.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var one string
		if err := node.Decode(&one); err != nil {
			return err
		}
		*s = stringList{one}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*s = stringList(many)
	return nil
}

// Loader compiles rule documents into a Repository.
type Loader struct {
	constants  map[string]string
	replicaKey string
}

func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the rule document at rulesPath (following file includes
// recursively) and the compiled-grammar artifact at grammarsPath, binds
// grammars to smalltalk rules by key and returns the finished repository.
// Any malformed record fails the whole load: the repository is accumulated
// in a draft and returned only on full success, so the caller can keep
// serving the previous rule set when Load errors.
func (l *Loader) Load(rulesPath, grammarsPath string) (*Repository, error) {
	grammars := map[string]*grammar.Grammar{}
	if grammarsPath != "" {
		var err error
		grammars, err = grammar.ReadArtifactFile(grammarsPath)
		if err != nil {
			return nil, &LoadError{Path: grammarsPath, Err: err}
		}
	}

	repo := NewRepository()
	if err := l.loadDocument(rulesPath, repo); err != nil {
		return nil, err
	}

	for _, rule := range repo.Smalltalk {
		if err := rule.bindGrammar(grammars); err != nil {
			return nil, &LoadError{Path: rulesPath, Err: err}
		}
	}
	for _, sc := range repo.Scenarios {
		for _, rule := range sc.Smalltalk {
			if err := rule.bindGrammar(grammars); err != nil {
				return nil, &LoadError{Path: rulesPath, Err: err}
			}
		}
	}
	if l.replicaKey != "" {
		g, ok := grammars[l.replicaKey]
		if !ok {
			return nil, &LoadError{Path: rulesPath, Err: fmt.Errorf("no compiled grammar for replica key %q", l.replicaKey)}
		}
		repo.ReplicaGrammar = g
	}

	log.Printf("[Scripting] Loaded rules: %d insteadof, %d story, %d smalltalk, %d comprehension variants, %d common phrases",
		len(repo.InsteadofRules), repo.Story.Len(), len(repo.Smalltalk), repo.Comprehension.Len(), len(repo.CommonPhrases))
	return repo, nil
}

// loadDocument parses one document into the draft repository. Inclusion is
// recursive; include graphs are trusted to be acyclic.
func (l *Loader) loadDocument(path string, repo *Repository) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &LoadError{Path: path, Err: err}
	}

	// Constants of the root document apply to every included one.
	if l.constants == nil {
		l.constants = doc.Constants
	}

	dir := filepath.Dir(path)

	for _, s := range doc.Greeting {
		repo.Greetings = append(repo.Greetings, l.subst(s))
	}
	for _, s := range doc.Goodbye {
		repo.Goodbyes = append(repo.Goodbyes, l.subst(s))
	}
	for _, s := range doc.OrderNotUnderstood {
		repo.OrderNotUnderstood = append(repo.OrderNotUnderstood, l.subst(s))
	}
	for _, s := range doc.CommonPhrases {
		repo.CommonPhrases = append(repo.CommonPhrases, l.subst(s))
	}
	if doc.ReplicaGrammar != "" {
		l.replicaKey = doc.ReplicaGrammar
	}

	for i, entry := range doc.Forms {
		if entry.Form == nil {
			return &LoadError{Path: path, Err: fmt.Errorf("forms[%d]: missing form node", i)}
		}
		form := &VerbalForm{Name: entry.Form.Name}
		for _, f := range entry.Form.Fields {
			form.Fields = append(form.Fields, FormField{Name: f.Name, Question: l.subst(f.Question)})
		}
		repo.Forms = append(repo.Forms, form)
	}

	for i, entry := range doc.Scenarios {
		if entry.Scenario == nil {
			return &LoadError{Path: path, Err: fmt.Errorf("scenarios[%d]: missing scenario node", i)}
		}
		sc := &Scenario{Name: entry.Scenario.Name}
		for _, step := range entry.Scenario.Steps {
			sc.Steps = append(sc.Steps, l.subst(step))
		}
		for j, st := range entry.Scenario.SmalltalkRules {
			rule, err := l.compileSmalltalk(st)
			if err != nil {
				return &LoadError{Path: path, Err: fmt.Errorf("scenario %q smalltalk_rules[%d]: %w", sc.Name, j, err)}
			}
			sc.Smalltalk = append(sc.Smalltalk, rule)
		}
		repo.Scenarios = append(repo.Scenarios, sc)
	}

	for i, entry := range doc.StoryRules {
		switch {
		case entry.StoryRule != nil:
			if err := l.compileStoryRule(entry.StoryRule, repo); err != nil {
				return &LoadError{Path: path, Err: fmt.Errorf("story_rules[%d]: %w", i, err)}
			}
		case entry.File != "":
			if err := l.loadDocument(filepath.Join(dir, entry.File), repo); err != nil {
				return err
			}
		default:
			return &LoadError{Path: path, Err: fmt.Errorf("story_rules[%d]: record is neither story_rule nor file", i)}
		}
	}

	for i, entry := range doc.Rules {
		switch {
		case entry.Rule != nil:
			rule, err := l.compileRule(entry.Rule)
			if err != nil {
				return &LoadError{Path: path, Err: fmt.Errorf("rules[%d]: %w", i, err)}
			}
			repo.InsteadofRules = append(repo.InsteadofRules, rule)
		case entry.File != "":
			if err := l.loadDocument(filepath.Join(dir, entry.File), repo); err != nil {
				return err
			}
		default:
			return &LoadError{Path: path, Err: fmt.Errorf("rules[%d]: record is neither rule nor file", i)}
		}
	}

	for i, entry := range doc.SmalltalkRules {
		rule, err := l.compileSmalltalk(entry)
		if err != nil {
			return &LoadError{Path: path, Err: fmt.Errorf("smalltalk_rules[%d]: %w", i, err)}
		}
		repo.Smalltalk = append(repo.Smalltalk, rule)
	}

	for i, entry := range doc.Comprehension {
		if entry.Rule == nil || entry.Rule.Anchor == "" {
			return &LoadError{Path: path, Err: fmt.Errorf("comprehension_rules[%d]: missing rule/anchor", i)}
		}
		anchor := l.subst(entry.Rule.Anchor)
		for _, variant := range entry.Rule.Variants {
			repo.Comprehension.Add(anchor, l.subst(variant))
		}
	}

	return nil
}

func (l *Loader) compileRule(node *ruleNode) (*Rule, error) {
	rule := &Rule{
		Name: node.Name,
		Cond: Condition{
			Intent:  node.If.Intent,
			Text:    l.subst(node.If.Text),
			RawText: l.subst(node.If.RawText),
		},
		Act: Action{Silent: node.Then.Nothing},
	}
	for _, s := range node.Then.Say {
		rule.Act.Say = append(rule.Act.Say, l.subst(s))
	}
	if err := rule.Cond.validate(); err != nil {
		return nil, err
	}
	if !rule.Act.Silent && len(rule.Act.Say) == 0 {
		return nil, fmt.Errorf("rule %q: action has neither say nor nothing", node.Name)
	}
	return rule, nil
}

// compileStoryRule registers a rule under its preceding-utterance key:
// switch rules key on the bot's previous line, if rules on the human's.
func (l *Loader) compileStoryRule(node *storyRuleNode, repo *Repository) error {
	switch {
	case node.Switch != nil:
		key := l.subst(node.Switch.When.PrevBotText)
		if key == "" {
			return fmt.Errorf("story rule %q: switch without prev_bot_text", node.Name)
		}
		rule := &Rule{Name: node.Name, Act: Action{Silent: node.Switch.Then.Nothing}}
		for _, s := range node.Switch.Then.Say {
			rule.Act.Say = append(rule.Act.Say, l.subst(s))
		}
		if !rule.Act.Silent && len(rule.Act.Say) == 0 {
			return fmt.Errorf("story rule %q: empty action", node.Name)
		}
		repo.Story.AddBotKeyed(key, rule)
		return nil

	case node.If != nil:
		key := node.If.RawText
		if key == "" {
			key = node.If.Text
		}
		if key == "" {
			return fmt.Errorf("story rule %q: if without text/raw_text", node.Name)
		}
		rule := &Rule{Name: node.Name, Act: Action{Silent: node.Then.Nothing}}
		for _, s := range node.Then.Say {
			rule.Act.Say = append(rule.Act.Say, l.subst(s))
		}
		if !rule.Act.Silent && len(rule.Act.Say) == 0 {
			return fmt.Errorf("story rule %q: empty action", node.Name)
		}
		repo.Story.AddHumanKeyed(l.subst(key), rule)
		return nil

	default:
		return fmt.Errorf("story rule %q: neither switch nor if", node.Name)
	}
}

func (l *Loader) compileSmalltalk(entry smalltalkEntry) (*SmalltalkRule, error) {
	node := entry.Rule
	if node == nil {
		return nil, fmt.Errorf("missing rule node")
	}
	rule := &SmalltalkRule{
		ConditionText:   l.subst(node.If.Text),
		ConditionIntent: node.If.Intent,
		GrammarKey:      node.Then.Generate,
	}
	for _, s := range node.Then.Say {
		rule.Answers = append(rule.Answers, l.subst(s))
	}
	if err := rule.validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

// subst expands $name constants from the root document.
func (l *Loader) subst(s string) string {
	if s == "" || len(l.constants) == 0 {
		return s
	}
	for name, value := range l.constants {
		s = strings.ReplaceAll(s, "$"+name, value)
	}
	return s
}
