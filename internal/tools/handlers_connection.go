package tools

// Connection lifecycle handlers (spec.md §4.5): each returns an OAuth
// authorization URL with a CSRF state value the server persists for up to
// ten minutes, or tears down/reports on an existing connection.

type connectResult struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

func handleConnectProviderGeneric(providerName string) Handler {
	return func(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
		if req.TenantID == "" {
			return nil, NewProtocolError(ErrInvalidParameters, "tenant_id is required to connect a provider")
		}
		state, err := cc.OAuthState.Create(req.UserID, req.TenantID, providerName)
		if err != nil {
			return nil, NewProtocolError(ErrInternal, "failed to mint OAuth state: "+err.Error())
		}
		url, err := cc.Providers.AuthorizationURL(cc.Ctx, req.TenantID, providerName, state)
		if err != nil {
			return nil, providerErrToProtocol(err)
		}
		return connectResult{AuthorizationURL: url, State: state}, nil
	}
}

func handleConnectStrava(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	return handleConnectProviderGeneric("strava")(cc, req)
}

func handleConnectFitbit(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	return handleConnectProviderGeneric("fitbit")(cc, req)
}

type connectProviderParams struct {
	Provider string `json:"provider"`
}

func handleConnectProvider(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p connectProviderParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider is required")
	}
	return handleConnectProviderGeneric(p.Provider)(cc, req)
}

type disconnectParams struct {
	Provider string `json:"provider"`
}

func handleDisconnectProvider(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	var p disconnectParams
	if perr := parseParams(req.Parameters, &p); perr != nil {
		return nil, perr
	}
	if p.Provider == "" {
		return nil, NewProtocolError(ErrInvalidParameters, "provider is required")
	}
	if err := cc.Providers.Disconnect(cc.Ctx, req.UserID, req.TenantID, p.Provider); err != nil {
		return nil, storeErrToProtocol(err)
	}
	return map[string]bool{"disconnected": true}, nil
}

func handleGetConnectionStatus(cc CallContext, req UniversalRequest) (any, *ProtocolError) {
	return cc.Providers.Status(cc.Ctx, req.UserID, req.TenantID), nil
}
