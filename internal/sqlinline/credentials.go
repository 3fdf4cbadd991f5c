package sqlinline

const QSelectProviderCredential = `--sql 51eddec0-a3cc-42cb-bb1d-63d9ef2348ca
select token, coalesce(properties->>'model', '')
from provider_credentials
where provider = $1::text;
`

const QUpsertProviderCredential = `--sql 91c032d6-a2c0-464d-a137-de9699aa78fc
insert into provider_credentials (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update
set token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
