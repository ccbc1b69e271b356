// Package acl decides which address book modifications are permitted.
//
// Rules match on the display type of the target object, the property being
// changed and the kind of session making the change. Rules are evaluated in
// order and the first match wins; when no rule matches, the default policy
// applies.
//
//	cfg, err := acl.FromConfig(appConfig.ACL)
//	if err != nil {
//	    return err
//	}
//	eval := acl.NewEvaluator(cfg)
//	ctx := acl.NewAccessContext(obj.DisplayType, nspi.PidTagAddressBookMember, acl.AddLink)
//	if !eval.CheckAccess(ctx) {
//	    return nspi.AccessDenied
//	}
package acl
