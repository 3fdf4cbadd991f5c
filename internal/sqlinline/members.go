package sqlinline

const QListMembers = `--sql b48ec269-2b7b-4f56-ad87-39add08d8d46
select id, name, phone, memo, photo_path, created_at, updated_at
from members
order by created_at desc, id
offset $1::int
limit $2::int;
`

const QSelectMemberByID = `--sql 538726d0-0970-4a09-ac3a-8392d165f4c2
select id, name, phone, memo, photo_path, created_at, updated_at
from members
where id = $1::text
limit 1;
`

const QUpsertMember = `--sql 0f117a29-918d-45e2-ac1f-45bc7052a44f
insert into members (id, name, phone, memo, photo_path, created_at)
values ($1::text, $2::text, $3::text, nullif($4::text, ''), nullif($5::text, ''), now())
on conflict (id) do update
set name = excluded.name,
    phone = excluded.phone,
    memo = coalesce(excluded.memo, members.memo),
    photo_path = coalesce(excluded.photo_path, members.photo_path),
    updated_at = now()
returning id, name, phone, memo, photo_path, created_at, updated_at;
`
