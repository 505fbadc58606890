package engine

type RuleSet struct {
	AccountRules []AccountRuleFunc
	// Rules which run for every intended post, in registration order.
	PostRules []PostRuleFunc
	// Additional rules keyed by normalized community name, evaluated after
	// the general tier.
	CommunityPostRules map[string][]PostRuleFunc
}

// Evaluates account-level rules. Rule errors roll up into c.Err; the first
// blocking reason stops the walk.
func (r *RuleSet) CallAccountRules(c *AccountContext) error {
	for _, f := range r.AccountRules {
		if err := f(c); err != nil {
			c.Logger.Error("rule execution failed", "err", err)
			c.Err = err
		}
		if c.Blocked() {
			return nil
		}
	}
	return nil
}

// Evaluates the post rule chain: first the general tier, then any rules
// registered for the target community. Evaluation stops at the first Deny,
// so a denied post carries exactly one rule-sourced reason and later rules
// never observe a half-blocked context.
func (r *RuleSet) CallPostRules(c *PostContext) error {
	for _, f := range r.PostRules {
		if err := f(c); err != nil {
			c.Logger.Error("rule execution failed", "err", err)
			c.Err = err
		}
		if c.Blocked() {
			return nil
		}
	}
	for _, f := range r.CommunityPostRules[c.Community.Name] {
		if err := f(c); err != nil {
			c.Logger.Error("rule execution failed", "err", err)
			c.Err = err
		}
		if c.Blocked() {
			return nil
		}
	}
	return nil
}
